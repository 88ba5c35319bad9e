package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// MistakeRepository exposes persistence helpers for mistake records.
type MistakeRepository interface {
	CreateMany(ctx context.Context, mistakes []models.Mistake) error
	ListByEvaluationID(ctx context.Context, evaluationID uint) ([]models.Mistake, error)
}

// NewMistakeRepository constructs a mistake repository.
func NewMistakeRepository(db *gorm.DB) MistakeRepository {
	return &mistakeRepository{db: db}
}

type mistakeRepository struct {
	db *gorm.DB
}

func (r *mistakeRepository) CreateMany(ctx context.Context, mistakes []models.Mistake) error {
	if len(mistakes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&mistakes).Error
}

func (r *mistakeRepository) ListByEvaluationID(ctx context.Context, evaluationID uint) ([]models.Mistake, error) {
	var mistakes []models.Mistake
	err := r.db.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("id ASC").
		Find(&mistakes).Error
	if err != nil {
		return nil, err
	}
	return mistakes, nil
}
