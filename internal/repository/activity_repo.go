package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// ActivityRepository exposes read helpers for activities.
type ActivityRepository interface {
	GetByID(ctx context.Context, id uint) (models.Activity, error)
}

// NewActivityRepository constructs an activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

type activityRepository struct {
	db *gorm.DB
}

func (r *activityRepository) GetByID(ctx context.Context, id uint) (models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}
