package errors

import (
	"errors"
	"fmt"
)

// ErrStorageNotFound marks a fetch for an object key that does not exist.
var ErrStorageNotFound = errors.New("object not found in storage")

// StorageError wraps a failure talking to the object store backend.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) error {
	return StorageError{Op: op, Err: err}
}

// ExtractionServiceError means the extraction endpoint answered with a
// non-success status or an empty/absent payload. StatusCode is zero when
// the request never produced a response.
type ExtractionServiceError struct {
	StatusCode int
	Message    string
}

func (e ExtractionServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("extraction service error: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("extraction service error: %s", e.Message)
}

// ExtractionValidationError means the extraction endpoint answered, but the
// payload does not match the expected resume shape. It is never coerced
// into a partial result.
type ExtractionValidationError struct {
	Field   string
	Message string
}

func (e ExtractionValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("extraction response validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("extraction response validation failed: %s", e.Message)
}
