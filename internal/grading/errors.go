package grading

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRosterNotFound     = errors.New("el curso no tiene lista de alumnos disponible")
	ErrStudentNotInRoster = errors.New("el alumno no está inscrito en el curso")
	ErrNoPendingChanges   = errors.New("no hay cambios pendientes para el alumno")
	ErrUnknownField       = errors.New("campo de calificación desconocido")
	ErrFieldNotApplicable = errors.New("el curso no requiere examen práctico")
)

// ValidationError a save was attempted with required fields missing.
// It never reaches the Repository.
type ValidationError struct {
	StudentID string
	Missing   []Field
}

func (e *ValidationError) Error() string {
	labels := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		labels[i] = f.Label()
	}
	return fmt.Sprintf("faltan campos obligatorios para %s: %s", e.StudentID, strings.Join(labels, ", "))
}

// BatchValidationError rejects a whole batch before any save starts.
type BatchValidationError struct {
	Invalid []*ValidationError
}

// Count number of invalid entries
func (e *BatchValidationError) Count() int { return len(e.Invalid) }

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("%d registro(s) incompleto(s); no se guardó ningún cambio", len(e.Invalid))
}

// Unwrap exposes the per-student errors to errors.As.
func (e *BatchValidationError) Unwrap() []error {
	errs := make([]error, len(e.Invalid))
	for i, v := range e.Invalid {
		errs[i] = v
	}
	return errs
}

// RemoteError the Repository rejected a write.
// Message is the text shown to the user; Err keeps the upstream cause.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.Err }

// Domain messages for known constraint violations.
const (
	msgDuplicateKey = "La clave ya está registrada; utilice un valor distinto."
	msgForeignKey   = "El registro está siendo utilizado por otros datos y no puede modificarse."
	msgValueTooBig  = "Uno de los valores es demasiado grande para el campo."
)

// TranslateRemoteMessage maps raw backend text to a domain message.
// Unrecognized messages pass through verbatim.
func TranslateRemoteMessage(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "duplicate"):
		return msgDuplicateKey
	case strings.Contains(lower, "foreign key"):
		return msgForeignKey
	case strings.Contains(lower, "data truncation"), strings.Contains(lower, "out of range"):
		return msgValueTooBig
	default:
		return raw
	}
}

// translateRemote wraps err as a *RemoteError carrying the translated message.
func translateRemote(err error) *RemoteError {
	raw := err.Error()
	var remote *RemoteError
	if errors.As(err, &remote) {
		raw = remote.Message
		if remote.Err != nil {
			err = remote.Err
		}
	}
	return &RemoteError{Message: TranslateRemoteMessage(raw), Err: err}
}
