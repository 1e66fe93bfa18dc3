package domain

import (
	"fmt"
	"time"
)

// TriageError is the standardized error envelope returned by the API and
// MCP surfaces.
type TriageError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *TriageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput    = "INVALID_INPUT"
	ErrNotFoundCode    = "NOT_FOUND"
	ErrSessionState    = "SESSION_STATE"
	ErrStorage         = "STORAGE_ERROR"
	ErrExternalService = "EXTERNAL_SERVICE_ERROR"
	ErrValidation      = "VALIDATION_ERROR"
	ErrInternalServer  = "INTERNAL_SERVER_ERROR"
	ErrUnavailable     = "SERVICE_UNAVAILABLE"
)

// ValidationError represents a rejected answer or form field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors collects every failed field of a form.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 1 {
		return v[0].Error()
	}
	return fmt.Sprintf("%d validation errors, first: %s", len(v), v[0].Error())
}

// Messages returns the user-facing message of each error in order.
func (v ValidationErrors) Messages() []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		out = append(out, e.Message)
	}
	return out
}

// NewTriageError creates a new TriageError with timestamp
func NewTriageError(code, message, details, requestID string) *TriageError {
	return &TriageError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
