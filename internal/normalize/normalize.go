// Package normalize turns records from heterogeneous upstream sources into
// one canonical shape.
//
// Sources disagree on key naming (camelCase vs. Capitalized_With_Underscores).
// Each canonical key has an explicit precedence list: the camelCase key wins
// when present and non-nil, then each legacy key in order, then the default.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Record a loosely typed key/value record
type Record map[string]any

// Kind value type of a canonical field
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindDate
)

// FieldRule one canonical key and the source keys it is read from, in precedence order.
// Keys[0] is the canonical (camelCase) key itself.
type FieldRule struct {
	Keys []string
	Kind Kind
}

// Canonical the canonical key
func (r FieldRule) Canonical() string { return r.Keys[0] }

// Schema the fixed key set of one canonical record
type Schema []FieldRule

// Canonical keys shared by callers.
const (
	KeyStudentID       = "curp"
	KeyGivenName       = "nombre"
	KeyPaternalSurname = "apellidoPaterno"
	KeyMaternalSurname = "apellidoMaterno"
	KeyJobTitle        = "puesto"
	KeyBirthDate       = "fechaNacimiento"

	KeyCourseID              = "cursoId"
	KeyCourseName            = "nombreCurso"
	KeySTPSCode              = "claveStps"
	KeyCourseDate            = "fecha"
	KeyPlace                 = "lugar"
	KeyCompany               = "empresa"
	KeyHours                 = "horas"
	KeyRequiresPracticalExam = "requiereExamenPractico"
	KeyInstructorID          = "instructorId"
	KeyInstructorName        = "instructorNombre"
	KeyPrice                 = "precio"
	KeyInstructorPayout      = "pagoInstructor"

	KeyInitialExam   = "evaluacionInicial"
	KeyFinalExam     = "evaluacionFinal"
	KeyPracticalExam = "examenPractico"
	KeyAverage       = "promedio"
	KeyResult        = "resultado"
	KeyNotes         = "observaciones"
)

// StudentSchema student records
var StudentSchema = Schema{
	{Keys: []string{KeyStudentID, "CURP", "Curp", "Id_Alumno"}, Kind: KindString},
	{Keys: []string{KeyGivenName, "Nombre", "Nombre_Alumno"}, Kind: KindString},
	{Keys: []string{KeyPaternalSurname, "Apellido_Paterno", "ApellidoPaterno"}, Kind: KindString},
	{Keys: []string{KeyMaternalSurname, "Apellido_Materno", "ApellidoMaterno"}, Kind: KindString},
	{Keys: []string{KeyJobTitle, "Puesto"}, Kind: KindString},
	{Keys: []string{KeyBirthDate, "Fecha_Nacimiento", "FechaNacimiento"}, Kind: KindDate},
}

// CourseSchema course and payout records
var CourseSchema = Schema{
	{Keys: []string{KeyCourseID, "id", "Id_Curso", "IdCurso"}, Kind: KindNumber},
	{Keys: []string{KeyCourseName, "Nombre_Curso", "NombreCurso"}, Kind: KindString},
	{Keys: []string{KeySTPSCode, "Clave_STPS", "stps", "STPS"}, Kind: KindString},
	{Keys: []string{KeyCourseDate, "Fecha", "Fecha_Ingreso", "fechaIngreso"}, Kind: KindDate},
	{Keys: []string{KeyPlace, "Lugar"}, Kind: KindString},
	{Keys: []string{KeyCompany, "Empresa", "Nombre_Empresa"}, Kind: KindString},
	{Keys: []string{KeyHours, "Horas"}, Kind: KindNumber},
	{Keys: []string{KeyRequiresPracticalExam, "Requiere_Examen_Practico", "Examen_Practico"}, Kind: KindBool},
	{Keys: []string{KeyInstructorID, "Instructor_Id", "Id_Instructor"}, Kind: KindNumber},
	{Keys: []string{KeyInstructorName, "Instructor", "Nombre_Instructor"}, Kind: KindString},
	{Keys: []string{KeyPrice, "Precio", "Costo"}, Kind: KindNumber},
	{Keys: []string{KeyInstructorPayout, "Pago_Instructor", "Honorarios", "honorarios"}, Kind: KindNumber},
}

// GradeSchema grade records
var GradeSchema = Schema{
	{Keys: []string{KeyStudentID, "CURP", "Curp", "Id_Alumno"}, Kind: KindString},
	{Keys: []string{KeyCourseID, "Id_Curso", "IdCurso"}, Kind: KindNumber},
	{Keys: []string{KeyInitialExam, "Evaluacion_Inicial", "EvaluacionInicial"}, Kind: KindNumber},
	{Keys: []string{KeyFinalExam, "Evaluacion_Final", "EvaluacionFinal"}, Kind: KindNumber},
	{Keys: []string{KeyPracticalExam, "Examen_Practico", "ExamenPractico"}, Kind: KindNumber},
	{Keys: []string{KeyAverage, "Promedio"}, Kind: KindNumber},
	{Keys: []string{KeyResult, "Resultado"}, Kind: KindString},
	{Keys: []string{KeyNotes, "Observaciones", "Notas"}, Kind: KindString},
}

// Normalize produces the canonical record of raw under schema.
// The result holds exactly the schema's canonical keys with defaults filled in:
// "" for text, 0 for numbers, false for booleans and nil for dates.
// It is pure and idempotent.
func (s Schema) Normalize(raw Record) Record {
	out := make(Record, len(s))
	for _, rule := range s {
		out[rule.Canonical()] = rule.resolve(raw)
	}
	return out
}

func (r FieldRule) resolve(raw Record) any {
	for _, key := range r.Keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if coerced, ok := coerce(v, r.Kind); ok {
			return coerced
		}
	}
	return zero(r.Kind)
}

func zero(k Kind) any {
	switch k {
	case KindNumber:
		return float64(0)
	case KindBool:
		return false
	case KindDate:
		return nil
	default:
		return ""
	}
}

// dateLayouts accepted textual date formats
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

func coerce(v any, k Kind) (any, bool) {
	switch k {
	case KindString:
		return toString(v)
	case KindNumber:
		return toNumber(v)
	case KindBool:
		return toBool(v)
	case KindDate:
		return toDate(v)
	}
	return nil, false
}

func toString(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return nil, false
}

func toNumber(v any) (any, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		return f, err == nil
	case bool:
		if t {
			return float64(1), true
		}
		return float64(0), true
	}
	return nil, false
}

func toBool(v any) (any, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case int:
		return t != 0, true
	case int64:
		return t != 0, true
	case json.Number:
		f, err := t.Float64()
		return f != 0, err == nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "si", "sí", "s", "yes", "y":
			return true, true
		case "0", "false", "no", "n":
			return false, true
		}
	}
	return nil, false
}

func toDate(v any) (any, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil, false
		}
		return t, true
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, true
			}
		}
	}
	return nil, false
}

// ── typed accessors on canonical records ──

// String text value of key
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Number numeric value of key
func (r Record) Number(key string) float64 {
	f, _ := r[key].(float64)
	return f
}

// Int integer value of key
func (r Record) Int(key string) int64 {
	return int64(r.Number(key))
}

// Bool boolean value of key
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Date date value of key, nil when unset
func (r Record) Date(key string) *time.Time {
	t, ok := r[key].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

// Has reports whether any of the rule's source keys is present with a non-nil value.
// Useful to tell "absent" from "explicitly zero" before normalization.
func (r FieldRule) Has(raw Record) bool {
	for _, key := range r.Keys {
		if v, ok := raw[key]; ok && v != nil {
			return true
		}
	}
	return false
}

// Rule looks up the rule of a canonical key.
func (s Schema) Rule(canonical string) (FieldRule, bool) {
	for _, r := range s {
		if r.Canonical() == canonical {
			return r, true
		}
	}
	return FieldRule{}, false
}
