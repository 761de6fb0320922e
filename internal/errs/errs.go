// Package errs defines the error taxonomy shared by stores, the storage
// gateway and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel values. Layers wrap them with fmt.Errorf("...: %w", err) and
// callers match with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("resource conflict")
	ErrValidation = errors.New("validation failed")

	// Object storage
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageQuota       = errors.New("storage quota or size limit exceeded")
	ErrInvalidKey         = errors.New("invalid storage key")
	ErrUploadFailed       = errors.New("upload failed")

	// Outbound mail
	ErrDeliveryFailed = errors.New("delivery failed")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records msg for field. The first message recorded for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Merge copies every field of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for f, m := range other.Fields {
		e.Add(f, m)
	}
}

// Empty reports whether no field has been recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns e as an error, or nil when no field was recorded.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid is shorthand for a ValidationError with a single field.
func Invalid(field, msg string) *ValidationError {
	v := NewValidationError()
	v.Add(field, msg)
	return v
}

// AsValidation extracts the *ValidationError wrapped in err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
