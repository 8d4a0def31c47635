package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the data-fusion layer. The HTTP layer maps these with
// errors.Is/As: validation → 400, not found → 404, upstream → 502,
// backend → labeled 500. Per-row parse failures are logged and skipped and
// never surface through these.
var (
	// ErrUpstreamUnavailable marks transport failures and non-200 responses
	// from the FIRMS feed.
	ErrUpstreamUnavailable = errors.New("upstream data source unavailable")

	// ErrBackendFailure marks errors raised by the remote image-analysis
	// backend, kept distinct from our own failures for operators.
	ErrBackendFailure = errors.New("analysis backend error")

	// ErrBackendUnavailable marks a backend that never initialized.
	ErrBackendUnavailable = errors.New("analysis backend not initialized")

	// ErrNotFound marks queries that matched no data (e.g. zero scenes in a
	// search window).
	ErrNotFound = errors.New("not found")
)

// ValidationError is a client input error carrying a human-readable message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with fmt-style formatting.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
