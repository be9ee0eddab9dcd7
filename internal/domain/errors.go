// backend-go/internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers distinguish them with errors.Is; the API
// layer maps them to status codes instead of collapsing everything into
// one opaque failure.
var (
	// ErrNotFound means no sales records exist for the requested key.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the request or dataset is malformed: unknown
	// strategy name, missing dataset columns, bad numeric parameters, or
	// a series too short to train on.
	ErrValidation = errors.New("validation failed")

	// ErrArtifactMissing is an internal signal, never surfaced to API
	// callers: the forecaster found no trained artifact for the key and
	// the service should train once and retry once.
	ErrArtifactMissing = errors.New("artifact missing")
)

// NotFoundError reports an empty result for a series key.
type NotFoundError struct {
	Key SeriesKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no sales records for location=%d category=%d", e.Key.LocationID, e.Key.CategoryID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports invalid input with a caller-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a missing-data failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is a client-input failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
