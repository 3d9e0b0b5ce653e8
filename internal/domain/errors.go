package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStyle      = errors.New("invalid or missing style parameter")
	ErrMissingImage      = errors.New("no image file provided")
	ErrImageTooLarge     = errors.New("file too large")
	ErrUnsupportedMedia  = errors.New("only image files are allowed")
	ErrProviderRejected  = errors.New("provider rejected request")
	ErrGenerationFailed  = errors.New("generation failed")
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrNotConfigured     = errors.New("not configured")
)

// ValidationError marks a client mistake. It is never retried.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid wraps err as a ValidationError for field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ProviderError is a non-2xx answer from a generation provider.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error { return ErrProviderRejected }

// GenerationFailure is a job the provider reported as failed.
type GenerationFailure struct {
	Provider string
	JobID    string
	Detail   string
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("%s: job %s failed: %s", e.Provider, e.JobID, e.Detail)
}

func (e *GenerationFailure) Unwrap() error { return ErrGenerationFailed }
