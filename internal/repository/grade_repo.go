package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// GradeRepository grade data access
type GradeRepository interface {
	Get(ctx context.Context, studentID string, courseID int64) (*model.Grade, error)
	ListByCourse(ctx context.Context, courseID int64) ([]model.Grade, error)
	Upsert(ctx context.Context, grade *model.Grade) error
}

type gradeRepo struct {
	db *gorm.DB
}

// NewGradeRepo creates a GradeRepository.
func NewGradeRepo(db *gorm.DB) GradeRepository {
	return &gradeRepo{db: db}
}

func (r *gradeRepo) Get(ctx context.Context, studentID string, courseID int64) (*model.Grade, error) {
	var g model.Grade
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gradeRepo) ListByCourse(ctx context.Context, courseID int64) ([]model.Grade, error) {
	var grades []model.Grade
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("student_id ASC").
		Find(&grades).Error
	return grades, err
}

// Upsert inserts the grade or overwrites the existing row of (student, course).
// created_at/created_by of an existing row are kept.
func (r *gradeRepo) Upsert(ctx context.Context, grade *model.Grade) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"initial_exam", "final_exam", "practical_exam",
				"average", "result", "notes",
				"updated_at", "updated_by",
			}),
		}).
		Create(grade).Error
}
