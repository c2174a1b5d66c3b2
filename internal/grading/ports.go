package grading

import (
	"context"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// Repository is the course/student/grade store the grading core reads and writes.
type Repository interface {
	// ListCourseRoster fails with ErrRosterNotFound when the course has no roster.
	// An empty roster is valid.
	ListCourseRoster(ctx context.Context, courseID int64) ([]model.Student, error)
	// GetGrade returns nil, nil for a student that was never graded.
	GetGrade(ctx context.Context, studentID string, courseID int64) (*model.Grade, error)
	// UpsertGrade fails with *RemoteError on any rejection.
	UpsertGrade(ctx context.Context, grade *model.Grade) error
}

// Severity of a user-facing notification
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier receives user-facing messages. Fire and forget.
type Notifier interface {
	Notify(message string, severity Severity)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, severity Severity)

// Notify calls f.
func (f NotifierFunc) Notify(message string, severity Severity) { f(message, severity) }

// discardNotifier drops everything.
type discardNotifier struct{}

func (discardNotifier) Notify(string, Severity) {}
