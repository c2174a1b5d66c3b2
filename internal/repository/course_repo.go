package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// CourseFilter optional criteria of a course listing. Zero values do not filter.
type CourseFilter struct {
	From         *time.Time
	To           *time.Time
	InstructorID *int64
}

// CourseRepository course data access
type CourseRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]model.Course, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo creates a CourseRepository.
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// List courses ordered by date. From/To compare calendar dates and are inclusive.
func (r *courseRepo) List(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	var courses []model.Course
	db := r.db.WithContext(ctx).Preload("Instructor")

	if filter.From != nil {
		db = db.Where("date >= ?", filter.From.Format("2006-01-02"))
	}
	if filter.To != nil {
		db = db.Where("date <= ?", filter.To.Format("2006-01-02"))
	}
	if filter.InstructorID != nil {
		db = db.Where("instructor_id = ?", *filter.InstructorID)
	}

	err := db.Order("date ASC, course_id ASC").Find(&courses).Error
	return courses, err
}
