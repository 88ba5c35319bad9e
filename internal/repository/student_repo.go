package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// StudentRepository exposes read helpers for students.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

type studentRepository struct {
	db *gorm.DB
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}
