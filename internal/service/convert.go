package service

import (
	"errors"
	"math"
	"time"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// ── shared business errors ──

var (
	ErrCourseNotFound     = errors.New("el curso no existe")
	ErrInstructorNotFound = errors.New("el instructor no existe")
	ErrInvalidDateRange   = errors.New("rango de fechas inválido: la fecha final es anterior a la inicial")
)

// ── conversions ──

func toCourseResponse(c *model.Course) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:                    c.CourseID,
		Name:                  c.Name,
		STPSCode:              c.STPSCode,
		Date:                  formatDate(c.Date),
		Place:                 c.Place,
		Company:               c.Company,
		Hours:                 c.Hours,
		RequiresPracticalExam: c.RequiresPracticalExam,
		InstructorID:          c.InstructorID,
		Price:                 c.Price,
		InstructorPayout:      c.InstructorPayout,
	}
	if c.Instructor != nil {
		resp.InstructorName = c.Instructor.Name
	}
	return resp
}

func toStudentResponse(s *model.Student) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:              s.StudentID,
		FullName:        s.FullName(),
		GivenName:       s.GivenName,
		PaternalSurname: s.PaternalSurname,
		MaternalSurname: s.MaternalSurname,
		JobTitle:        s.JobTitle,
	}
	if s.BirthDate != nil {
		resp.BirthDate = formatDate(*s.BirthDate)
	}
	return resp
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}

// parseDate reads a YYYY-MM-DD string as midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dto.DateLayout, s, loc)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
