package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// StudentRepository student and enrollment data access
type StudentRepository interface {
	ListRoster(ctx context.Context, courseID int64) ([]model.Student, error)
	IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository.
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

// ListRoster students enrolled in a course, by surname.
func (r *studentRepo) ListRoster(ctx context.Context, courseID int64) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN enrollments e ON e.student_id = students.student_id").
		Where("e.course_id = ?", courseID).
		Order("students.paternal_surname ASC, students.maternal_surname ASC, students.given_name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	return count > 0, err
}
