package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// EvaluationRepository exposes persistence helpers for evaluations. The
// submission_id unique index guarantees at most one evaluation per
// submission; retry paths purge prior rows before re-creating.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	Update(ctx context.Context, evaluation *models.Evaluation) error
	GetByID(ctx context.Context, id uint) (models.Evaluation, error)
	GetBySubmissionID(ctx context.Context, submissionID uint) (models.Evaluation, error)
	PurgeBySubmissionID(ctx context.Context, submissionID uint) error
}

// NewEvaluationRepository constructs an evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

type evaluationRepository struct {
	db *gorm.DB
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) Update(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Save(evaluation).Error
}

func (r *evaluationRepository) GetByID(ctx context.Context, id uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.db.WithContext(ctx).
		Preload("Mistakes").
		Preload("Feedback").
		First(&evaluation, id).Error
	if err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) GetBySubmissionID(ctx context.Context, submissionID uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.db.WithContext(ctx).
		Preload("Mistakes").
		Preload("Feedback").
		Where("submission_id = ?", submissionID).
		First(&evaluation).Error
	if err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

// PurgeBySubmissionID removes the evaluation for a submission along with its
// mistakes and feedback, in one transaction. Used by retries to keep
// re-evaluation idempotent. A missing evaluation is not an error.
func (r *evaluationRepository) PurgeBySubmissionID(ctx context.Context, submissionID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var evaluation models.Evaluation
		err := tx.Where("submission_id = ?", submissionID).First(&evaluation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Where("evaluation_id = ?", evaluation.ID).Delete(&models.Mistake{}).Error; err != nil {
			return err
		}
		if err := tx.Where("evaluation_id = ?", evaluation.ID).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		return tx.Delete(&evaluation).Error
	})
}
