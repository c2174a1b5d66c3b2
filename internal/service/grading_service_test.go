package service

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/grading"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

const (
	curpAna   = "AAAA800101MDFRRN01"
	curpBeto  = "BBBB800101HDFRRN02"
	curpCarla = "CCCC800101MDFRRN03"

	courseTheory    int64 = 10
	coursePractical int64 = 20
)

// ── test helpers ──

func setupGradingService(store PendingStore) (GradingService, *mocks) {
	repo, m := newMockRepository()

	m.courses.courses[courseTheory] = &model.Course{CourseID: courseTheory, Name: "Primeros auxilios", Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)}
	m.courses.courses[coursePractical] = &model.Course{CourseID: coursePractical, Name: "Trabajos en altura", RequiresPracticalExam: true, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}

	roster := []model.Student{
		{StudentID: curpAna, GivenName: "Ana", PaternalSurname: "Arias"},
		{StudentID: curpBeto, GivenName: "Beto", PaternalSurname: "Bravo"},
		{StudentID: curpCarla, GivenName: "Carla", PaternalSurname: "Cruz"},
	}
	m.students.enroll(courseTheory, roster...)
	m.students.enroll(coursePractical, roster...)

	return NewGradingService(repo, store, zap.NewNop()), m
}

func setField(t *testing.T, svc GradingService, user, student, field, value string) *dto.RowResponse {
	t.Helper()
	resp, err := svc.SetField(context.Background(), user, student, &dto.SetFieldRequest{Field: field, Value: value})
	if err != nil {
		t.Fatalf("SetField(%s, %s=%s) failed: %v", student, field, value, err)
	}
	return resp
}

func hasSeverity(notes []dto.NotificationResponse, severity grading.Severity) bool {
	for _, n := range notes {
		if n.Severity == string(severity) {
			return true
		}
	}
	return false
}

// ── Open ──

func TestGradingService_Open_CourseNotFound(t *testing.T) {
	svc, _ := setupGradingService(nil)

	_, err := svc.Open(context.Background(), "u1", 999)
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestGradingService_Open_ShowsBaseline(t *testing.T) {
	svc, m := setupGradingService(nil)
	m.grades.grades[gradeKey(curpBeto, courseTheory)] = &model.Grade{
		StudentID: curpBeto, CourseID: courseTheory, InitialExam: 80, FinalExam: 70, Average: 75, Result: "APTO",
	}

	resp, err := svc.Open(context.Background(), "u1", courseTheory)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(resp.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(resp.Rows))
	}
	if resp.Rows[0].StudentID != curpAna || resp.Rows[2].StudentID != curpCarla {
		t.Error("rows must follow roster order")
	}

	beto := resp.Rows[1]
	if beto.FinalExam == nil || *beto.FinalExam != 70 || beto.Average != 75 || beto.Result != "APTO" {
		t.Errorf("baseline not shown: %+v", beto)
	}
	if beto.PracticalExam != nil {
		t.Error("practical exam must be hidden when the course does not require it")
	}
	if resp.Rows[0].FinalExam != nil || resp.Rows[0].Result != "" {
		t.Errorf("ungraded student should be empty: %+v", resp.Rows[0])
	}
}

func TestGradingService_NoSession(t *testing.T) {
	svc, _ := setupGradingService(nil)
	ctx := context.Background()

	if _, err := svc.Current(ctx, "nobody"); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("Current: expected ErrSessionNotOpen, got %v", err)
	}
	if _, err := svc.SaveAll(ctx, "nobody"); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("SaveAll: expected ErrSessionNotOpen, got %v", err)
	}
	if err := svc.Close(ctx, "nobody"); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("Close: expected ErrSessionNotOpen, got %v", err)
	}
}

// ── SetField / SaveOne ──

func TestGradingService_SetFieldAndSaveOne(t *testing.T) {
	svc, m := setupGradingService(nil)
	ctx := context.Background()
	if _, err := svc.Open(ctx, "u1", courseTheory); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	setField(t, svc, "u1", curpAna, "evaluacionInicial", "80")
	row := setField(t, svc, "u1", curpAna, "final_exam", "70").Row
	if !row.HasPendingChanges || !row.CanSave {
		t.Errorf("row should be pending and savable: %+v", row)
	}
	if row.Average != 75 || row.Result != "APTO" {
		t.Errorf("live average = %v / %s, want 75 / APTO", row.Average, row.Result)
	}

	saved, err := svc.SaveOne(ctx, "u1", curpAna)
	if err != nil {
		t.Fatalf("SaveOne failed: %v", err)
	}
	if saved.Row.HasPendingChanges || saved.PendingCount != 0 {
		t.Errorf("pending edit should be gone after save: %+v", saved)
	}
	if !hasSeverity(saved.Notifications, grading.SeveritySuccess) {
		t.Errorf("expected a success notification, got %+v", saved.Notifications)
	}

	stored := m.grades.grades[gradeKey(curpAna, courseTheory)]
	if stored == nil || stored.Average != 75 || stored.Result != "APTO" {
		t.Fatalf("grade not stored correctly: %+v", stored)
	}
	if stored.UpdatedBy == nil || *stored.UpdatedBy != "u1" {
		t.Error("grade should be stamped with the caller")
	}
}

func TestGradingService_SetField_Errors(t *testing.T) {
	svc, _ := setupGradingService(nil)
	ctx := context.Background()
	if _, err := svc.Open(ctx, "u1", courseTheory); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tests := []struct {
		name    string
		student string
		field   string
		wantErr error
	}{
		{"unknown field", curpAna, "promedio", grading.ErrUnknownField},
		{"student not on roster", "ZZZZ000000HDFRRN09", "final_exam", grading.ErrStudentNotInRoster},
		{"practical on theory course", curpAna, "practical_exam", grading.ErrFieldNotApplicable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetField(ctx, "u1", tt.student, &dto.SetFieldRequest{Field: tt.field, Value: "90"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGradingService_SaveOne_ValidationError(t *testing.T) {
	svc, m := setupGradingService(nil)
	ctx := context.Background()
	if _, err := svc.Open(ctx, "u1", coursePractical); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	setField(t, svc, "u1", curpAna, "final_exam", "90")
	_, err := svc.SaveOne(ctx, "u1", curpAna)

	var verr *grading.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	failure, ok := ToValidationFailure(err)
	if !ok || len(failure.Invalid) != 1 || failure.Invalid[0].Missing[0] != string(grading.FieldPracticalExam) {
		t.Errorf("unexpected validation payload: %+v", failure)
	}
	if m.grades.upserts != 0 {
		t.Error("validation failure must not reach the repository")
	}
	if notes := svc.DrainNotifications("u1"); !hasSeverity(notes, grading.SeverityWarning) {
		t.Errorf("expected a warning notification, got %+v", notes)
	}
}

// ── SaveAll ──

func TestGradingService_SaveAll_RejectsBatchUpFront(t *testing.T) {
	svc, m := setupGradingService(nil)
	ctx := context.Background()
	if _, err := svc.Open(ctx, "u1", coursePractical); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	setField(t, svc, "u1", curpAna, "final_exam", "90")
	setField(t, svc, "u1", curpAna, "practical_exam", "85")
	setField(t, svc, "u1", curpBeto, "final_exam", "90") // no practical
	setField(t, svc, "u1", curpCarla, "final_exam", "75")
	setField(t, svc, "u1", curpCarla, "practical_exam", "80")

	_, err := svc.SaveAll(ctx, "u1")
	var batch *grading.BatchValidationError
	if !errors.As(err, &batch) {
		t.Fatalf("expected BatchValidationError, got %v", err)
	}
	if batch.Count() != 1 || batch.Invalid[0].StudentID != curpBeto {
		t.Errorf("expected 1 invalid entry for %s, got %+v", curpBeto, batch.Invalid)
	}
	if m.grades.upserts != 0 {
		t.Errorf("no save may start, got %d upserts", m.grades.upserts)
	}

	current, _ := svc.Current(ctx, "u1")
	if current.PendingCount != 3 {
		t.Errorf("all edits must stay pending, got %d", current.PendingCount)
	}
}

func TestGradingService_SaveAll_IndependentFailures(t *testing.T) {
	svc, m := setupGradingService(nil)
	ctx := context.Background()
	m.grades.upsertErr[curpBeto] = errors.New(`ERROR: duplicate key value violates unique constraint "grades_pkey"`)

	if _, err := svc.Open(ctx, "u1", courseTheory); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, id := range []string{curpAna, curpBeto, curpCarla} {
		setField(t, svc, "u1", id, "final_exam", "85")
	}

	resp, err := svc.SaveAll(ctx, "u1")
	if err != nil {
		t.Fatalf("SaveAll must not fail on partial failure: %v", err)
	}
	if resp.Succeeded != 2 || resp.Failed != 1 {
		t.Errorf("succeeded=%d failed=%d, want 2/1", resp.Succeeded, resp.Failed)
	}
	if len(resp.Failures) != 1 || resp.Failures[0].StudentID != curpBeto {
		t.Fatalf("unexpected failures: %+v", resp.Failures)
	}
	if strings.Contains(resp.Failures[0].Message, "grades_pkey") {
		t.Errorf("raw database text should be translated, got %q", resp.Failures[0].Message)
	}
	if resp.PendingCount != 1 {
		t.Errorf("failed edit must stay pending, got %d", resp.PendingCount)
	}
	if m.grades.grades[gradeKey(curpCarla, courseTheory)] == nil {
		t.Error("a failure must not block later students")
	}
}

// ── course switching and snapshots ──

func TestGradingService_SwitchCourseDiscardsEdits(t *testing.T) {
	store := newMockPendingStore()
	svc, _ := setupGradingService(store)
	ctx := context.Background()

	if _, err := svc.Open(ctx, "u1", courseTheory); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	setField(t, svc, "u1", curpAna, "final_exam", "90")
	if _, ok := store.data["u1"]; !ok {
		t.Fatal("pending edits should be snapshotted")
	}

	resp, err := svc.Open(ctx, "u1", coursePractical)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if resp.PendingCount != 0 {
		t.Error("no edit may carry over to another course")
	}
	if !hasSeverity(resp.Notifications, grading.SeverityWarning) {
		t.Error("discarding edits should be announced")
	}
	if _, ok := store.data["u1"]; ok {
		t.Error("snapshot of the previous course should be deleted")
	}

	back, _ := svc.Open(ctx, "u1", courseTheory)
	if back.PendingCount != 0 {
		t.Error("returning to the first course must not resurrect discarded edits")
	}
}

func TestGradingService_ReopenSameCourseKeepsEdits(t *testing.T) {
	svc, _ := setupGradingService(nil)
	ctx := context.Background()

	svc.Open(ctx, "u1", courseTheory)
	setField(t, svc, "u1", curpAna, "final_exam", "90")

	resp, err := svc.Open(ctx, "u1", courseTheory)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if resp.PendingCount != 1 || resp.Rows[0].FinalExam == nil || *resp.Rows[0].FinalExam != 90 {
		t.Errorf("edits should survive a reload of the same course: %+v", resp)
	}
}

func TestGradingService_RestoresSnapshotAfterRestart(t *testing.T) {
	store := newMockPendingStore()
	svc, _ := setupGradingService(store)
	ctx := context.Background()

	svc.Open(ctx, "u1", courseTheory)
	setField(t, svc, "u1", curpBeto, "final_exam", "65")
	setField(t, svc, "u1", curpBeto, "notes", "repite módulo")

	// a new process sharing the same store
	restarted, _ := setupGradingService(store)
	resp, err := restarted.Open(ctx, "u1", courseTheory)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	beto := resp.Rows[1]
	if !beto.HasPendingChanges || beto.FinalExam == nil || *beto.FinalExam != 65 || beto.Notes != "repite módulo" {
		t.Errorf("snapshot not restored: %+v", beto)
	}
	if !hasSeverity(resp.Notifications, grading.SeverityInfo) {
		t.Error("restoring edits should be announced")
	}
}

func TestGradingService_SwitchCourseAfterRestartDiscardsEdits(t *testing.T) {
	store := newMockPendingStore()
	svc, _ := setupGradingService(store)
	ctx := context.Background()

	svc.Open(ctx, "u1", courseTheory)
	setField(t, svc, "u1", curpAna, "final_exam", "90")

	// the new process never saw the theory session in memory
	restarted, _ := setupGradingService(store)
	resp, err := restarted.Open(ctx, "u1", coursePractical)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if resp.PendingCount != 0 {
		t.Error("no edit may carry over to another course")
	}
	if !hasSeverity(resp.Notifications, grading.SeverityWarning) {
		t.Error("discarding stored edits should be announced")
	}
	if len(store.data) != 0 {
		t.Error("the other course's snapshot should be deleted")
	}

	back, err := restarted.Open(ctx, "u1", courseTheory)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if back.PendingCount != 0 {
		t.Errorf("returning to the first course must not resurrect discarded edits, got %d pending", back.PendingCount)
	}
}

func TestGradingService_EditDuringOpenIsNotOverwritten(t *testing.T) {
	store := newMockPendingStore()
	svc, _ := setupGradingService(store)
	ctx := context.Background()

	svc.Open(ctx, "u1", courseTheory)
	setField(t, svc, "u1", curpBeto, "final_exam", "65")

	restarted, _ := setupGradingService(store)

	done := make(chan error, 1)
	go func() {
		// retry until the session is visible, then edit the student being restored
		for {
			_, err := restarted.SetField(ctx, "u1", curpBeto, &dto.SetFieldRequest{Field: "notes", Value: "sin constancia"})
			if errors.Is(err, ErrSessionNotOpen) {
				runtime.Gosched()
				continue
			}
			done <- err
			return
		}
	}()

	if _, err := restarted.Open(ctx, "u1", courseTheory); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	resp, _ := restarted.Current(ctx, "u1")
	beto := resp.Rows[1]
	if beto.FinalExam == nil || *beto.FinalExam != 65 || beto.Notes != "sin constancia" {
		t.Errorf("restored and concurrent edits should both survive: %+v", beto)
	}
}

func TestGradingService_SessionsAreIsolatedPerUser(t *testing.T) {
	svc, _ := setupGradingService(nil)
	ctx := context.Background()

	svc.Open(ctx, "u1", courseTheory)
	svc.Open(ctx, "u2", courseTheory)
	setField(t, svc, "u1", curpAna, "final_exam", "90")

	other, _ := svc.Current(ctx, "u2")
	if other.PendingCount != 0 {
		t.Error("edits of one user must not leak into another user's session")
	}
}

func TestGradingService_Close(t *testing.T) {
	store := newMockPendingStore()
	svc, _ := setupGradingService(store)
	ctx := context.Background()

	svc.Open(ctx, "u1", courseTheory)
	setField(t, svc, "u1", curpAna, "final_exam", "90")

	if err := svc.Close(ctx, "u1"); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := svc.Current(ctx, "u1"); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("expected ErrSessionNotOpen after Close, got %v", err)
	}
	if len(store.data) != 0 {
		t.Error("Close should drop the snapshot")
	}
}
