package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/grading"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/repository"
)

// gradingStore adapts the gorm repositories to grading.Repository.
// Grades of a roster are fetched in one query and served from memory.
type gradingStore struct {
	repo   *repository.Repository
	course int64
	grades map[string]*model.Grade
}

func newGradingStore(repo *repository.Repository) *gradingStore {
	return &gradingStore{repo: repo}
}

func (s *gradingStore) ListCourseRoster(ctx context.Context, courseID int64) ([]model.Student, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grading.ErrRosterNotFound
		}
		return nil, err
	}

	roster, err := s.repo.Student.ListRoster(ctx, courseID)
	if err != nil {
		return nil, err
	}

	grades, err := s.repo.Grade.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	s.course = courseID
	s.grades = make(map[string]*model.Grade, len(grades))
	for i := range grades {
		s.grades[grades[i].StudentID] = &grades[i]
	}

	return roster, nil
}

func (s *gradingStore) GetGrade(ctx context.Context, studentID string, courseID int64) (*model.Grade, error) {
	if s.grades != nil && courseID == s.course {
		return s.grades[studentID], nil
	}

	g, err := s.repo.Grade.Get(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return g, nil
}

func (s *gradingStore) UpsertGrade(ctx context.Context, grade *model.Grade) error {
	if err := s.repo.Grade.Upsert(ctx, grade); err != nil {
		return &grading.RemoteError{Message: err.Error(), Err: err}
	}
	if s.grades != nil && grade.CourseID == s.course {
		g := *grade
		s.grades[g.StudentID] = &g
	}
	return nil
}
