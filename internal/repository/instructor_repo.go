package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// InstructorRepository instructor data access
type InstructorRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Instructor, error)
}

type instructorRepo struct {
	db *gorm.DB
}

// NewInstructorRepo creates an InstructorRepository.
func NewInstructorRepo(db *gorm.DB) InstructorRepository {
	return &instructorRepo{db: db}
}

func (r *instructorRepo) GetByID(ctx context.Context, id int64) (*model.Instructor, error) {
	var ins model.Instructor
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", id).
		First(&ins).Error
	if err != nil {
		return nil, err
	}
	return &ins, nil
}
