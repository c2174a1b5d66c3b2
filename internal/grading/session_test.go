package grading

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// ── fakes ──

type fakeRepo struct {
	roster    map[int64][]model.Student
	grades    map[string]model.Grade
	upsertErr map[string]error
	upserts   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		roster:    make(map[int64][]model.Student),
		grades:    make(map[string]model.Grade),
		upsertErr: make(map[string]error),
	}
}

func (r *fakeRepo) ListCourseRoster(_ context.Context, courseID int64) ([]model.Student, error) {
	students, ok := r.roster[courseID]
	if !ok {
		return nil, ErrRosterNotFound
	}
	return students, nil
}

func (r *fakeRepo) GetGrade(_ context.Context, studentID string, _ int64) (*model.Grade, error) {
	g, ok := r.grades[studentID]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *fakeRepo) UpsertGrade(_ context.Context, g *model.Grade) error {
	r.upserts = append(r.upserts, g.StudentID)
	if err := r.upsertErr[g.StudentID]; err != nil {
		return err
	}
	r.grades[g.StudentID] = *g
	return nil
}

type notification struct {
	message  string
	severity Severity
}

type recordingNotifier struct {
	got []notification
}

func (n *recordingNotifier) Notify(message string, severity Severity) {
	n.got = append(n.got, notification{message, severity})
}

func (n *recordingNotifier) last() notification {
	if len(n.got) == 0 {
		return notification{}
	}
	return n.got[len(n.got)-1]
}

const (
	curp1 = "AAAA800101HDFRRN01"
	curp2 = "BBBB800101HDFRRN02"
	curp3 = "CCCC800101HDFRRN03"
)

func setupSession(t *testing.T, requiresPractical bool) (*Session, *fakeRepo, *recordingNotifier) {
	t.Helper()
	repo := newFakeRepo()
	repo.roster[1] = []model.Student{
		{StudentID: curp1, GivenName: "Ana"},
		{StudentID: curp2, GivenName: "Beto"},
		{StudentID: curp3, GivenName: "Carla"},
	}
	n := &recordingNotifier{}
	course := model.Course{CourseID: 1, Name: "Trabajos en altura", RequiresPracticalExam: requiresPractical}
	s, err := OpenSession(context.Background(), repo, n, zap.NewNop(), course, "instructor-1")
	if err != nil {
		t.Fatalf("OpenSession should succeed: %v", err)
	}
	return s, repo, n
}

// ── open ──

func TestOpenSession_RosterNotFound(t *testing.T) {
	repo := newFakeRepo()
	_, err := OpenSession(context.Background(), repo, nil, nil, model.Course{CourseID: 99}, "")
	if !errors.Is(err, ErrRosterNotFound) {
		t.Errorf("expected ErrRosterNotFound, got %v", err)
	}
}

func TestOpenSession_EmptyRosterIsValid(t *testing.T) {
	repo := newFakeRepo()
	repo.roster[5] = []model.Student{}
	s, err := OpenSession(context.Background(), repo, nil, nil, model.Course{CourseID: 5}, "")
	if err != nil {
		t.Fatalf("empty roster should open: %v", err)
	}
	if len(s.Rows()) != 0 {
		t.Error("expected no rows")
	}
}

func TestOpenSession_LoadsBaseline(t *testing.T) {
	repo := newFakeRepo()
	repo.roster[1] = []model.Student{{StudentID: curp1}}
	repo.grades[curp1] = model.Grade{StudentID: curp1, CourseID: 1, FinalExam: 82}

	s, err := OpenSession(context.Background(), repo, nil, nil, model.Course{CourseID: 1}, "")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if got := s.DisplayValue(curp1, FieldFinalExam).Float(); got != 82 {
		t.Errorf("expected baseline 82, got %v", got)
	}
	if s.HasPendingChanges(curp1) {
		t.Error("a fresh session has no pending edits")
	}
}

// ── set field ──

func TestSession_SetField_Rules(t *testing.T) {
	s, _, _ := setupSession(t, false)

	if _, err := s.SetField("NOT-ENROLLED", FieldFinalExam, "80"); !errors.Is(err, ErrStudentNotInRoster) {
		t.Errorf("expected ErrStudentNotInRoster, got %v", err)
	}
	if _, err := s.SetField(curp1, FieldPracticalExam, "80"); !errors.Is(err, ErrFieldNotApplicable) {
		t.Errorf("expected ErrFieldNotApplicable, got %v", err)
	}
	v, err := s.SetField(curp1, FieldFinalExam, "120")
	if err != nil || v.Float() != 100 {
		t.Errorf("expected clamp to 100, got %v (%v)", v.Float(), err)
	}
}

func TestSession_RowLiveAverage(t *testing.T) {
	s, _, _ := setupSession(t, true)
	s.SetField(curp1, FieldInitialExam, "70")
	s.SetField(curp1, FieldFinalExam, "60")
	s.SetField(curp1, FieldPracticalExam, "75")

	row, err := s.Row(curp1)
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if !almostEqual(row.Average, (70.0+60+75)/3) {
		t.Errorf("average = %v", row.Average)
	}
	if row.Result != ResultFail {
		t.Errorf("result = %q, want NO APTO", row.Result)
	}
	if !row.CanSave || !row.HasPendingChanges {
		t.Errorf("row flags %+v", row)
	}

	untouched, _ := s.Row(curp2)
	if untouched.Result != ResultNone {
		t.Errorf("ungraded student should have no result, got %q", untouched.Result)
	}
}

// ── save one ──

func TestSession_SaveOne_RoundTrip(t *testing.T) {
	s, repo, n := setupSession(t, false)
	s.SetField(curp1, FieldInitialExam, "80")
	s.SetField(curp1, FieldFinalExam, "70")

	g, err := s.SaveOne(context.Background(), curp1)
	if err != nil {
		t.Fatalf("SaveOne should succeed: %v", err)
	}
	if !almostEqual(g.Average, 75) || g.Result != string(ResultPass) {
		t.Errorf("saved grade %+v", g)
	}
	if g.UpdatedBy == nil || *g.UpdatedBy != "instructor-1" {
		t.Error("actor should be stamped on the grade")
	}
	if s.HasPendingChanges(curp1) {
		t.Error("pending edit should be gone after save")
	}
	if s.DisplayValue(curp1, FieldFinalExam).Float() != 70 || s.DisplayValue(curp1, FieldInitialExam).Float() != 80 {
		t.Error("display should show the saved values")
	}
	if repo.grades[curp1].Result != string(ResultPass) {
		t.Error("repository should hold the saved grade")
	}
	if n.last().severity != SeveritySuccess {
		t.Errorf("expected success notification, got %+v", n.last())
	}
}

func TestSession_SaveOne_RecomputesFromMerge(t *testing.T) {
	repo := newFakeRepo()
	repo.roster[1] = []model.Student{{StudentID: curp1}}
	// stale derived columns in the baseline
	repo.grades[curp1] = model.Grade{StudentID: curp1, CourseID: 1, FinalExam: 90, Average: 10, Result: "NO APTO"}
	s, _ := OpenSession(context.Background(), repo, nil, nil, model.Course{CourseID: 1}, "")

	s.SetField(curp1, FieldNotes, "reprogramado")
	g, err := s.SaveOne(context.Background(), curp1)
	if err != nil {
		t.Fatalf("SaveOne: %v", err)
	}
	if g.Average != 90 || g.Result != string(ResultPass) || g.Notes != "reprogramado" {
		t.Errorf("grade not recomputed: %+v", g)
	}
}

func TestSession_SaveOne_ValidationError(t *testing.T) {
	s, repo, n := setupSession(t, true)
	s.SetField(curp1, FieldFinalExam, "90")

	_, err := s.SaveOne(context.Background(), curp1)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Missing) != 1 || verr.Missing[0] != FieldPracticalExam {
		t.Errorf("missing = %v", verr.Missing)
	}
	if len(repo.upserts) != 0 {
		t.Error("validation failures must not reach the repository")
	}
	if n.last().severity != SeverityWarning {
		t.Errorf("expected warning notification, got %+v", n.last())
	}
}

func TestSession_SaveOne_NoPendingChanges(t *testing.T) {
	s, _, _ := setupSession(t, false)
	if _, err := s.SaveOne(context.Background(), curp1); !errors.Is(err, ErrNoPendingChanges) {
		t.Errorf("expected ErrNoPendingChanges, got %v", err)
	}
}

func TestSession_SaveOne_RemoteErrorKeepsEdit(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		message string
	}{
		{"duplicate", "ERROR: duplicate key value violates unique constraint", msgDuplicateKey},
		{"foreign key", "violates FOREIGN KEY constraint", msgForeignKey},
		{"out of range", "numeric field value out of range", msgValueTooBig},
		{"truncation", "Data truncation: Data too long", msgValueTooBig},
		{"pass-through", "connection reset by peer", "connection reset by peer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, n := setupSession(t, false)
			repo.upsertErr[curp1] = &RemoteError{Message: tt.raw}
			s.SetField(curp1, FieldFinalExam, "85")

			_, err := s.SaveOne(context.Background(), curp1)
			var remote *RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("expected RemoteError, got %v", err)
			}
			if remote.Message != tt.message {
				t.Errorf("message = %q, want %q", remote.Message, tt.message)
			}
			if !s.HasPendingChanges(curp1) {
				t.Error("failed save must keep the pending edit")
			}
			if s.DisplayValue(curp1, FieldFinalExam).Float() != 85 {
				t.Error("pending value lost")
			}
			if n.last().severity != SeverityError || n.last().message != tt.message {
				t.Errorf("notification %+v", n.last())
			}
		})
	}
}

func TestSession_SaveOne_PlainErrorBecomesRemoteError(t *testing.T) {
	s, repo, _ := setupSession(t, false)
	cause := errors.New("duplicate entry for key PRIMARY")
	repo.upsertErr[curp1] = cause
	s.SetField(curp1, FieldFinalExam, "85")

	_, err := s.SaveOne(context.Background(), curp1)
	var remote *RemoteError
	if !errors.As(err, &remote) || remote.Message != msgDuplicateKey {
		t.Fatalf("expected translated RemoteError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("RemoteError should wrap the upstream cause")
	}
}

// ── save all ──

func TestSession_SaveAll_RejectsBatchUpFront(t *testing.T) {
	s, repo, n := setupSession(t, true)
	s.SetField(curp1, FieldFinalExam, "90")
	s.SetField(curp1, FieldPracticalExam, "90")
	s.SetField(curp2, FieldFinalExam, "90") // practical missing
	s.SetField(curp3, FieldFinalExam, "90")
	s.SetField(curp3, FieldPracticalExam, "90")

	result, err := s.SaveAll(context.Background())
	var batch *BatchValidationError
	if !errors.As(err, &batch) {
		t.Fatalf("expected BatchValidationError, got %v", err)
	}
	if batch.Count() != 1 || batch.Invalid[0].StudentID != curp2 {
		t.Errorf("invalid = %+v", batch.Invalid)
	}
	var single *ValidationError
	if !errors.As(err, &single) {
		t.Error("batch error should expose per-student ValidationError")
	}
	if len(repo.upserts) != 0 || result.Succeeded != 0 || result.Failed != 0 {
		t.Errorf("no save may be attempted: upserts=%v result=%+v", repo.upserts, result)
	}
	if s.PendingCount() != 3 {
		t.Error("all edits must remain pending")
	}
	if n.last().severity != SeverityWarning {
		t.Errorf("notification %+v", n.last())
	}
}

func TestSession_SaveAll_IndependentFailures(t *testing.T) {
	s, repo, n := setupSession(t, false)
	repo.upsertErr[curp2] = &RemoteError{Message: "foreign key violation"}
	for _, id := range []string{curp3, curp2, curp1} {
		s.SetField(id, FieldFinalExam, "80")
	}

	result, err := s.SaveAll(context.Background())
	if err != nil {
		t.Fatalf("partial failure must not be an error: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Failures) != 1 || result.Failures[0].StudentID != curp2 || result.Failures[0].Message != msgForeignKey {
		t.Errorf("failures = %+v", result.Failures)
	}
	// roster order, not edit order
	want := []string{curp1, curp2, curp3}
	for i, id := range want {
		if repo.upserts[i] != id {
			t.Fatalf("upsert order = %v, want %v", repo.upserts, want)
		}
	}
	if s.HasPendingChanges(curp1) || !s.HasPendingChanges(curp2) || s.HasPendingChanges(curp3) {
		t.Error("only the failed student keeps a pending edit")
	}
	if n.last().severity != SeverityWarning {
		t.Errorf("notification %+v", n.last())
	}
}

func TestSession_SaveAll_NothingPending(t *testing.T) {
	s, repo, n := setupSession(t, false)
	result, err := s.SaveAll(context.Background())
	if err != nil || result.Succeeded != 0 || len(repo.upserts) != 0 {
		t.Errorf("unexpected result %+v, %v", result, err)
	}
	if n.last().severity != SeverityInfo {
		t.Errorf("notification %+v", n.last())
	}
}

func TestSession_SaveAll_StopsOnCancelledContext(t *testing.T) {
	s, repo, _ := setupSession(t, false)
	s.SetField(curp1, FieldFinalExam, "80")
	s.SetField(curp2, FieldFinalExam, "80")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.SaveAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(repo.upserts) != 0 {
		t.Error("no upsert after cancellation")
	}
}

func TestSession_PendingEditsRestore(t *testing.T) {
	s, repo, _ := setupSession(t, false)
	s.SetField(curp2, FieldFinalExam, "77")
	s.SetField(curp1, FieldNotes, "falta firma")
	edits := s.PendingEdits()
	if len(edits) != 2 || edits[0].StudentID != curp1 {
		t.Fatalf("edits = %+v", edits)
	}

	fresh, _ := OpenSession(context.Background(), repo, nil, nil, s.Course(), "")
	edits = append(edits, PendingEdit{StudentID: "GONE", Fields: map[Field]Value{FieldFinalExam: Score(1)}})
	if n := fresh.RestorePending(edits); n != 2 {
		t.Errorf("restored %d, want 2", n)
	}
	if fresh.DisplayValue(curp2, FieldFinalExam).Float() != 77 {
		t.Error("restored value missing")
	}
}
