package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError rejects a request before any fetch or state change.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldMap flattens Fields for JSON responses.
func (err ValidationError) FieldMap() map[string]string {
	out := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		out[f.Field] = f.Error
	}
	return out
}

// DataUnavailable is returned as a value when the rewards source reports an
// error for one student. Batch runs render it inline and continue.
type DataUnavailable struct {
	StudentCode string
	Message     string
}

func (e *DataUnavailable) Error() string { return e.Message }

// ExportOverflow is a warning: the export completed with more than two pages.
type ExportOverflow struct {
	StudentCode string
	Pages       int
}

func (e *ExportOverflow) Error() string {
	return fmt.Sprintf("export for %s overflowed: %d pages", e.StudentCode, e.Pages)
}

// ExportFailure wraps a capture or writer error together with the paginator
// phase it happened in.
type ExportFailure struct {
	Phase string
	Err   error
}

func (e *ExportFailure) Error() string {
	return fmt.Sprintf("export failed during %s: %v", e.Phase, e.Err)
}

func (e *ExportFailure) Unwrap() error { return e.Err }

func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func AsDataUnavailable(err error) (*DataUnavailable, bool) {
	var d *DataUnavailable
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

func IsNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
