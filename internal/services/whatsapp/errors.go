// File: internal/services/whatsapp/errors.go
package whatsapp

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeRateLimit  ErrorType = "RATE_LIMIT"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type WhatsAppError struct {
	Type    ErrorType
	Code    int
	Message string
	Cause   error
}

func (e *WhatsAppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("WhatsApp %s error: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("WhatsApp %s error: %s", e.Type, e.Message)
}

func (e *WhatsAppError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether sending again may succeed.
func (e *WhatsAppError) Retryable() bool {
	switch e.Type {
	case ErrTypeNetwork, ErrTypeRateLimit:
		return true
	case ErrTypeProvider:
		return e.Code >= 500
	default:
		return false
	}
}
