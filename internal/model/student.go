package model

import (
	"strings"
	"time"
)

// StudentIDLength national IDs (CURP) are always 18 characters
const StudentIDLength = 18

// Student a trainee. StudentID is the national ID, supplied, never generated.
type Student struct {
	StudentID       string     `gorm:"type:varchar(18);primaryKey" json:"student_id"`
	GivenName       string     `gorm:"type:varchar(100);not null"  json:"given_name"`
	PaternalSurname string     `gorm:"type:varchar(100)"           json:"paternal_surname"`
	MaternalSurname string     `gorm:"type:varchar(100)"           json:"maternal_surname"`
	JobTitle        string     `gorm:"type:varchar(150)"           json:"job_title"`
	BirthDate       *time.Time `gorm:"type:date"                   json:"birth_date,omitempty"`
	BaseModel
}

// TableName table name
func (Student) TableName() string { return "students" }

// FullName given name followed by both surnames
func (s *Student) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.GivenName, s.PaternalSurname, s.MaternalSurname} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Enrollment membership in the roster of a course
type Enrollment struct {
	CourseID  int64  `gorm:"primaryKey"                  json:"course_id"`
	StudentID string `gorm:"type:varchar(18);primaryKey" json:"student_id"`
	BaseModel

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName table name
func (Enrollment) TableName() string { return "enrollments" }
