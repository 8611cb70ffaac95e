// File: internal/services/vectorindex/errors.go
package vectorindex

import "fmt"

// IndexError wraps failures from either index backend.
type IndexError struct {
	Type     string
	Provider string
	Message  string
	Err      error
}

func (e *IndexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s error: %s: %v", e.Provider, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s error: %s", e.Provider, e.Type, e.Message)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

func NewConnectionError(provider, message string, err error) *IndexError {
	return &IndexError{Type: "connection", Provider: provider, Message: message, Err: err}
}

func NewOperationError(provider, message string, err error) *IndexError {
	return &IndexError{Type: "operation", Provider: provider, Message: message, Err: err}
}

func NewConfigError(provider, message string) *IndexError {
	return &IndexError{Type: "config", Provider: provider, Message: message}
}
