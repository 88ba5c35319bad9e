package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// SubmissionRepository exposes persistence helpers for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListPending(ctx context.Context, limit int) ([]models.Submission, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Activity").
		Preload("Evaluation").
		Preload("Evaluation.Mistakes").
		Preload("Evaluation.Feedback").
		First(&submission, id).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// ListPending returns pending submissions in submission-time order so batch
// evaluation stays fair.
func (r *submissionRepository) ListPending(ctx context.Context, limit int) ([]models.Submission, error) {
	var submissions []models.Submission
	query := r.db.WithContext(ctx).
		Where("status = ?", models.SubmissionStatusPending).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}
