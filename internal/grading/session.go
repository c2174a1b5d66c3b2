package grading

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// Session grades the roster of one course. Switching courses means opening a
// new Session; pending edits never carry over.
//
// A Session is not safe for concurrent use.
type Session struct {
	course   model.Course
	actor    string
	roster   []model.Student
	index    map[string]int
	tracker  *Tracker
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
}

// Row the live view of one student.
type Row struct {
	Student           model.Student
	InitialExam       Value
	FinalExam         Value
	PracticalExam     Value
	Notes             string
	Average           float64
	Result            Result
	HasPendingChanges bool
	CanSave           bool
}

// ItemFailure a student whose save failed inside a batch.
type ItemFailure struct {
	StudentID string
	Message   string
}

// BatchResult aggregate outcome of SaveAll.
type BatchResult struct {
	Succeeded int
	Failed    int
	Failures  []ItemFailure
}

// OpenSession loads the roster and persisted grades of course.
// actor is stamped on every grade written by the session.
func OpenSession(ctx context.Context, repo Repository, notifier Notifier, logger *zap.Logger, course model.Course, actor string) (*Session, error) {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	roster, err := repo.ListCourseRoster(ctx, course.CourseID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		course:   course,
		actor:    actor,
		roster:   roster,
		index:    make(map[string]int, len(roster)),
		tracker:  NewTracker(),
		repo:     repo,
		notifier: notifier,
		logger:   logger.With(zap.Int64("course_id", course.CourseID)),
	}

	for i, st := range roster {
		s.index[st.StudentID] = i
		g, err := repo.GetGrade(ctx, st.StudentID, course.CourseID)
		if err != nil {
			return nil, fmt.Errorf("load grade of %s: %w", st.StudentID, err)
		}
		if g != nil {
			s.tracker.SetBaseline(*g)
		}
	}

	return s, nil
}

// Course the course being graded
func (s *Session) Course() model.Course { return s.course }

func (s *Session) requiresPractical() bool { return s.course.RequiresPracticalExam }

// SetField records user input for one student.
func (s *Session) SetField(studentID string, field Field, raw string) (Value, error) {
	if _, ok := s.index[studentID]; !ok {
		return Value{}, ErrStudentNotInRoster
	}
	if field == FieldPracticalExam && !s.requiresPractical() {
		return Value{}, ErrFieldNotApplicable
	}
	return s.tracker.SetField(studentID, field, raw), nil
}

// DisplayValue see Tracker.DisplayValue.
func (s *Session) DisplayValue(studentID string, field Field) Value {
	return s.tracker.DisplayValue(studentID, field)
}

// HasPendingChanges see Tracker.HasPendingChanges.
func (s *Session) HasPendingChanges(studentID string) bool {
	return s.tracker.HasPendingChanges(studentID)
}

// CanSave see Tracker.CanSave.
func (s *Session) CanSave(studentID string) bool {
	return s.tracker.CanSave(studentID, s.requiresPractical())
}

// Row computes the live view of one student.
func (s *Session) Row(studentID string) (Row, error) {
	i, ok := s.index[studentID]
	if !ok {
		return Row{}, ErrStudentNotInRoster
	}
	return s.row(s.roster[i]), nil
}

// Rows live view of the whole roster, in roster order.
func (s *Session) Rows() []Row {
	rows := make([]Row, 0, len(s.roster))
	for _, st := range s.roster {
		rows = append(rows, s.row(st))
	}
	return rows
}

func (s *Session) row(st model.Student) Row {
	id := st.StudentID
	r := Row{
		Student:           st,
		InitialExam:       s.tracker.DisplayValue(id, FieldInitialExam),
		FinalExam:         s.tracker.DisplayValue(id, FieldFinalExam),
		Notes:             s.tracker.DisplayValue(id, FieldNotes).Text,
		HasPendingChanges: s.tracker.HasPendingChanges(id),
		CanSave:           s.CanSave(id),
	}
	if s.requiresPractical() {
		r.PracticalExam = s.tracker.DisplayValue(id, FieldPracticalExam)
	}
	r.Average = ComputeAverage(r.InitialExam.Float(), r.FinalExam.Float(), r.PracticalExam.Float(), s.requiresPractical())
	if r.Average > 0 || HasNoLicense(r.Notes) {
		r.Result = DetermineResult(r.Average, r.PracticalExam.Float(), s.requiresPractical(), r.Notes)
	}
	return r
}

// PendingEdits pending edits in roster order.
func (s *Session) PendingEdits() []PendingEdit {
	var edits []PendingEdit
	for _, st := range s.roster {
		if edit, ok := s.tracker.Pending(st.StudentID); ok {
			edits = append(edits, edit)
		}
	}
	return edits
}

// RestorePending re-applies captured edits; students no longer on the roster are skipped.
func (s *Session) RestorePending(edits []PendingEdit) int {
	n := 0
	for _, edit := range edits {
		if _, ok := s.index[edit.StudentID]; !ok {
			continue
		}
		if !s.requiresPractical() {
			delete(edit.Fields, FieldPracticalExam)
		}
		s.tracker.Restore(edit)
		n++
	}
	return n
}

// PendingCount number of students with unsaved edits
func (s *Session) PendingCount() int { return s.tracker.PendingCount() }

// ════════════════════════════════════════════════════════════
// Save orchestration
// ════════════════════════════════════════════════════════════

// SaveOne persists the pending edit of one student.
// On failure the pending edit stays in place.
func (s *Session) SaveOne(ctx context.Context, studentID string) (model.Grade, error) {
	g, err := s.save(ctx, studentID)
	if err != nil {
		s.notifier.Notify(err.Error(), severityOf(err))
		return model.Grade{}, err
	}
	s.notifier.Notify(fmt.Sprintf("Calificación de %s guardada: %s", studentID, g.Result), SeveritySuccess)
	return g, nil
}

// SaveAll persists every pending edit, one student at a time in roster order.
// The batch is rejected up front if any edit is incomplete; after that each
// student succeeds or fails on its own.
func (s *Session) SaveAll(ctx context.Context) (BatchResult, error) {
	var result BatchResult

	ids := make([]string, 0, s.tracker.PendingCount())
	for _, st := range s.roster {
		if s.tracker.HasPendingChanges(st.StudentID) {
			ids = append(ids, st.StudentID)
		}
	}
	if len(ids) == 0 {
		s.notifier.Notify("No hay cambios pendientes por guardar", SeverityInfo)
		return result, nil
	}

	var invalid []*ValidationError
	for _, id := range ids {
		if missing := s.tracker.MissingFields(id, s.requiresPractical()); len(missing) > 0 {
			invalid = append(invalid, &ValidationError{StudentID: id, Missing: missing})
		}
	}
	if len(invalid) > 0 {
		err := &BatchValidationError{Invalid: invalid}
		s.notifier.Notify(err.Error(), SeverityWarning)
		return result, err
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := s.save(ctx, id); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ItemFailure{StudentID: id, Message: err.Error()})
			continue
		}
		result.Succeeded++
	}

	if result.Failed == 0 {
		s.notifier.Notify(fmt.Sprintf("Se guardaron %d calificaciones", result.Succeeded), SeveritySuccess)
	} else {
		s.notifier.Notify(fmt.Sprintf("Guardadas: %d, con error: %d", result.Succeeded, result.Failed), SeverityWarning)
	}
	return result, nil
}

func (s *Session) save(ctx context.Context, studentID string) (model.Grade, error) {
	if _, ok := s.index[studentID]; !ok {
		return model.Grade{}, ErrStudentNotInRoster
	}
	if !s.tracker.HasPendingChanges(studentID) {
		return model.Grade{}, ErrNoPendingChanges
	}
	if missing := s.tracker.MissingFields(studentID, s.requiresPractical()); len(missing) > 0 {
		return model.Grade{}, &ValidationError{StudentID: studentID, Missing: missing}
	}

	// derived columns are recomputed from the merge, never taken from a cache
	g := s.tracker.Merged(studentID)
	g.CourseID = s.course.CourseID
	Evaluate(&g, s.requiresPractical())
	if s.actor != "" {
		actor := s.actor
		g.UpdatedBy = &actor
		if g.CreatedBy == nil {
			g.CreatedBy = &actor
		}
	}

	if err := s.repo.UpsertGrade(ctx, &g); err != nil {
		remote := translateRemote(err)
		s.logger.Warn("grade upsert rejected",
			zap.String("student_id", studentID),
			zap.String("message", remote.Message),
			zap.Error(err),
		)
		return model.Grade{}, remote
	}

	s.tracker.Promote(g)
	return g, nil
}

func severityOf(err error) Severity {
	var validation *ValidationError
	if errors.As(err, &validation) || errors.Is(err, ErrNoPendingChanges) {
		return SeverityWarning
	}
	return SeverityError
}
