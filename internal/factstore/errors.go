// File: internal/factstore/errors.go
package factstore

import "fmt"

type ErrorType string

const (
	ErrTypeDecode     ErrorType = "DECODE"
	ErrTypeValidation ErrorType = "VALIDATION"
)

// DatasetError is returned when a dataset cannot become a Store.
type DatasetError struct {
	Type    ErrorType
	Key     string
	Message string
	Cause   error
}

func (e *DatasetError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("fact store %s error for %q: %s", e.Type, e.Key, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("fact store %s error: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("fact store %s error: %s", e.Type, e.Message)
}

func (e *DatasetError) Unwrap() error {
	return e.Cause
}

func newValidationError(key, msg string) *DatasetError {
	return &DatasetError{Type: ErrTypeValidation, Key: key, Message: msg}
}
