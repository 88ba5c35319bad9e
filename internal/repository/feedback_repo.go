package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// FeedbackRepository exposes persistence helpers for composed feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	Update(ctx context.Context, feedback *models.Feedback) error
	GetByID(ctx context.Context, id uint) (models.Feedback, error)
	GetByEvaluationID(ctx context.Context, evaluationID uint) (models.Feedback, error)
}

// NewFeedbackRepository constructs a feedback repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

type feedbackRepository struct {
	db *gorm.DB
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) Update(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Save(feedback).Error
}

func (r *feedbackRepository) GetByID(ctx context.Context, id uint) (models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).First(&feedback, id).Error; err != nil {
		return models.Feedback{}, err
	}
	return feedback, nil
}

func (r *feedbackRepository) GetByEvaluationID(ctx context.Context, evaluationID uint) (models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		First(&feedback).Error
	if err != nil {
		return models.Feedback{}, err
	}
	return feedback, nil
}
