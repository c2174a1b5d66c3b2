package grading

import (
	"math"
	"strconv"
	"strings"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// Field an editable column of a grade
type Field string

const (
	FieldInitialExam   Field = "initial_exam"
	FieldFinalExam     Field = "final_exam"
	FieldPracticalExam Field = "practical_exam"
	FieldNotes         Field = "notes"
)

var fieldAliases = map[string]Field{
	"initial_exam":      FieldInitialExam,
	"evaluacioninicial": FieldInitialExam,
	"final_exam":        FieldFinalExam,
	"evaluacionfinal":   FieldFinalExam,
	"practical_exam":    FieldPracticalExam,
	"examenpractico":    FieldPracticalExam,
	"notes":             FieldNotes,
	"observaciones":     FieldNotes,
}

// ParseField accepts the canonical name or the camelCase Spanish key.
func ParseField(s string) (Field, error) {
	if f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", ErrUnknownField
}

// Numeric reports whether the field holds a 0..100 score.
func (f Field) Numeric() bool { return f != FieldNotes }

// Label human-readable name used in messages
func (f Field) Label() string {
	switch f {
	case FieldInitialExam:
		return "evaluación inicial"
	case FieldFinalExam:
		return "evaluación final"
	case FieldPracticalExam:
		return "examen práctico"
	case FieldNotes:
		return "observaciones"
	}
	return string(f)
}

// Value of one field. A nil Number is an empty score.
type Value struct {
	Number *float64 `json:"number"`
	Text   string   `json:"text,omitempty"`
}

// Score builds a numeric Value.
func Score(v float64) Value { return Value{Number: &v} }

// IsEmpty empty score or empty text
func (v Value) IsEmpty() bool { return v.Number == nil && v.Text == "" }

// Float the score, 0 when empty.
func (v Value) Float() float64 {
	if v.Number == nil {
		return 0
	}
	return *v.Number
}

// ParseScore reads user input as a score clamped to [0, 100].
// Non-numeric input yields an empty Value rather than 0.
func ParseScore(raw string) Value {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return Value{}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}
	}
	return Score(ClampScore(n))
}

// PendingEdit unsaved fields for one student, overlaid on the baseline.
type PendingEdit struct {
	StudentID string          `json:"student_id"`
	Fields    map[Field]Value `json:"fields"`
}

// Tracker holds the server-confirmed baseline and the pending overlay
// for the students of one course.
type Tracker struct {
	baseline map[string]model.Grade
	pending  map[string]*PendingEdit
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		baseline: make(map[string]model.Grade),
		pending:  make(map[string]*PendingEdit),
	}
}

// SetBaseline records the persisted grade of a student.
func (t *Tracker) SetBaseline(g model.Grade) {
	t.baseline[g.StudentID] = g
}

// Baseline returns the persisted grade of a student.
func (t *Tracker) Baseline(studentID string) (model.Grade, bool) {
	g, ok := t.baseline[studentID]
	return g, ok
}

// SetField writes raw input into the pending edit of a student.
// Scores are clamped; notes are stored as typed. The baseline is never touched.
func (t *Tracker) SetField(studentID string, field Field, raw string) Value {
	var v Value
	if field.Numeric() {
		v = ParseScore(raw)
	} else {
		v = Value{Text: raw}
	}

	edit, ok := t.pending[studentID]
	if !ok {
		edit = &PendingEdit{StudentID: studentID, Fields: make(map[Field]Value)}
		t.pending[studentID] = edit
	}
	edit.Fields[field] = v
	return v
}

// DisplayValue resolves pending value, then a non-empty baseline value, then empty.
func (t *Tracker) DisplayValue(studentID string, field Field) Value {
	if edit, ok := t.pending[studentID]; ok {
		if v, touched := edit.Fields[field]; touched {
			return v
		}
	}

	g, ok := t.baseline[studentID]
	if !ok {
		return Value{}
	}
	switch field {
	case FieldInitialExam:
		return baselineScore(g.InitialExam)
	case FieldFinalExam:
		return baselineScore(g.FinalExam)
	case FieldPracticalExam:
		return baselineScore(g.PracticalExam)
	case FieldNotes:
		return Value{Text: g.Notes}
	}
	return Value{}
}

func baselineScore(v float64) Value {
	if v == 0 {
		return Value{}
	}
	return Score(v)
}

// HasPendingChanges true iff a pending edit exists for the student.
func (t *Tracker) HasPendingChanges(studentID string) bool {
	_, ok := t.pending[studentID]
	return ok
}

// MissingFields required fields that are empty for the student.
// The final exam is always required, the practical exam only when the course asks for it.
func (t *Tracker) MissingFields(studentID string, requiresPractical bool) []Field {
	var missing []Field
	if t.DisplayValue(studentID, FieldFinalExam).Number == nil {
		missing = append(missing, FieldFinalExam)
	}
	if requiresPractical && t.DisplayValue(studentID, FieldPracticalExam).Number == nil {
		missing = append(missing, FieldPracticalExam)
	}
	return missing
}

// CanSave true iff a pending edit exists and no required field is empty.
func (t *Tracker) CanSave(studentID string, requiresPractical bool) bool {
	return t.HasPendingChanges(studentID) && len(t.MissingFields(studentID, requiresPractical)) == 0
}

// Merged returns the baseline with the pending edit applied.
func (t *Tracker) Merged(studentID string) model.Grade {
	g, ok := t.baseline[studentID]
	if !ok {
		g = model.Grade{StudentID: studentID}
	}
	g.InitialExam = t.DisplayValue(studentID, FieldInitialExam).Float()
	g.FinalExam = t.DisplayValue(studentID, FieldFinalExam).Float()
	g.PracticalExam = t.DisplayValue(studentID, FieldPracticalExam).Float()
	g.Notes = t.DisplayValue(studentID, FieldNotes).Text
	return g
}

// Promote makes g the new baseline and drops the student's pending edit.
func (t *Tracker) Promote(g model.Grade) {
	t.baseline[g.StudentID] = g
	delete(t.pending, g.StudentID)
}

// Pending returns a copy of the pending edit of a student.
func (t *Tracker) Pending(studentID string) (PendingEdit, bool) {
	edit, ok := t.pending[studentID]
	if !ok {
		return PendingEdit{}, false
	}
	cp := PendingEdit{StudentID: edit.StudentID, Fields: make(map[Field]Value, len(edit.Fields))}
	for f, v := range edit.Fields {
		cp.Fields[f] = v
	}
	return cp, true
}

// Restore re-applies previously captured pending edits.
func (t *Tracker) Restore(edit PendingEdit) {
	if len(edit.Fields) == 0 {
		return
	}
	restored := &PendingEdit{StudentID: edit.StudentID, Fields: make(map[Field]Value, len(edit.Fields))}
	for f, v := range edit.Fields {
		restored.Fields[f] = v
	}
	t.pending[edit.StudentID] = restored
}

// Discard drops the pending edit of one student.
func (t *Tracker) Discard(studentID string) {
	delete(t.pending, studentID)
}

// PendingCount number of students with pending edits
func (t *Tracker) PendingCount() int { return len(t.pending) }
