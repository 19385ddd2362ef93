package catalogue

import (
	"errors"

	"github.com/mrlokans/readinglist/internal/database/books"
)

// User-facing messages for failures that are not validation errors.
const (
	MessageImportFailed = "Failed to import books from the remote catalogue"
	MessageStoreFailed  = "Could not access the reading list"
	MessageUnexpected   = "Something went wrong"
)

// ValidationError rejects user input before anything reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrEmptyTitle    = &ValidationError{Field: "title", Message: "title must not be empty"}
	ErrInvalidStatus = &ValidationError{Field: "status", Message: "status must be one of planning, reading, done"}
)

// ImportError wraps any failure that aborted an import.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	return "import catalogue: " + e.Err.Error()
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// UserMessage maps an error returned by the Service to text suitable for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var importErr *ImportError
	if errors.As(err, &importErr) {
		return MessageImportFailed
	}

	var storeErr *books.StoreError
	if errors.As(err, &storeErr) {
		return MessageStoreFailed
	}

	return MessageUnexpected
}

// IsValidation reports whether err was caused by rejected user input.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
