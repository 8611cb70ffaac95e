// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeStore      ErrorType = "STORE"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	SessionID string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewStoreError(operation, sessionID string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStore, Operation: operation, Message: "conversation store failed", SessionID: sessionID, Cause: cause}
}

func NewNotFoundError(operation, sessionID string) *ChatError {
	return &ChatError{Type: ErrTypeNotFound, Operation: operation, Message: "conversation not found", SessionID: sessionID}
}

// IsType reports whether err is a ChatError of type t.
func IsType(err error, t ErrorType) bool {
	var ce *ChatError
	return errors.As(err, &ce) && ce.Type == t
}
