package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kike1196/beyco-sdadd-sub000/config"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/normalize"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/repository"
)

// CourseService course catalog reads
type CourseService interface {
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.CourseResponse, error)
	Roster(ctx context.Context, id int64) ([]dto.StudentResponse, error)
	// InstructorCalendar renders the instructor's courses as an iCalendar feed.
	InstructorCalendar(ctx context.Context, instructorID int64) ([]byte, string, error)
}

type courseService struct {
	repo   *repository.Repository
	loc    *time.Location
	host   string
	logger *zap.Logger
}

// NewCourseService creates a CourseService.
func NewCourseService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{
		repo:   repo,
		loc:    cfg.Honorarium.Location(),
		host:   calendarHost(cfg.Server.BaseURL),
		logger: logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	filter, err := s.courseFilter(&req.DateRangeRequest)
	if err != nil {
		return nil, err
	}
	filter.InstructorID = req.InstructorID

	courses, err := s.repo.Course.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list courses", zap.Error(err))
		return nil, err
	}

	courses = normalize.DedupFirst(courses, func(c model.Course) int64 { return c.CourseID })

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

func (s *courseService) courseFilter(r *dto.DateRangeRequest) (repository.CourseFilter, error) {
	var filter repository.CourseFilter
	if r.Start != "" {
		from, err := parseDate(r.Start, s.loc)
		if err != nil {
			return filter, ErrInvalidDateRange
		}
		filter.From = &from
	}
	if r.End != "" {
		to, err := parseDate(r.End, s.loc)
		if err != nil {
			return filter, ErrInvalidDateRange
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, ErrInvalidDateRange
	}
	return filter, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id int64) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("failed to get course", zap.Int64("course_id", id), zap.Error(err))
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── Roster ──────────────────────

func (s *courseService) Roster(ctx context.Context, id int64) ([]dto.StudentResponse, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	students, err := s.repo.Student.ListRoster(ctx, id)
	if err != nil {
		s.logger.Error("failed to list roster", zap.Int64("course_id", id), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, toStudentResponse(&students[i]))
	}
	return result, nil
}

// ────────────────────── InstructorCalendar ──────────────────────

func (s *courseService) InstructorCalendar(ctx context.Context, instructorID int64) ([]byte, string, error) {
	instructor, err := s.repo.Instructor.GetByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInstructorNotFound
		}
		s.logger.Error("failed to get instructor", zap.Int64("instructor_id", instructorID), zap.Error(err))
		return nil, "", err
	}

	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{InstructorID: &instructorID})
	if err != nil {
		s.logger.Error("failed to list instructor courses", zap.Int64("instructor_id", instructorID), zap.Error(err))
		return nil, "", err
	}

	cal := buildCalendar(instructor, courses, s.host, time.Now())
	filename := fmt.Sprintf("cursos_instructor_%d.ics", instructorID)
	return []byte(cal.Serialize()), filename, nil
}

// buildCalendar one all-day event per dated course.
func buildCalendar(instructor *model.Instructor, courses []model.Course, host string, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Capacita//Cursos//ES")
	cal.SetXWRCalName("Cursos de " + instructor.Name)

	for _, c := range courses {
		if c.Date.IsZero() {
			continue
		}
		event := cal.AddEvent("curso-" + strconv.FormatInt(c.CourseID, 10) + "@" + host)
		event.SetDtStampTime(stamp)
		day := time.Date(c.Date.Year(), c.Date.Month(), c.Date.Day(), 0, 0, 0, 0, time.UTC)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(c.Name)
		if c.Place != "" {
			event.SetLocation(c.Place)
		}
		event.SetDescription(fmt.Sprintf("Empresa: %s\nClave STPS: %s\nHoras: %g", c.Company, c.STPSCode, c.Hours))
	}
	return cal
}

func calendarHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "capacita"
	}
	return u.Hostname()
}
