package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	ErrorNetwork     ErrorCategory = "network"
	ErrorAuth        ErrorCategory = "auth"
	ErrorValidation  ErrorCategory = "validation"
	ErrorConfig      ErrorCategory = "config"
	ErrorAPI         ErrorCategory = "api"
	ErrorTimeout     ErrorCategory = "timeout"
	ErrorPermission  ErrorCategory = "permission"
	ErrorUnavailable ErrorCategory = "unavailable"
	ErrorInternal    ErrorCategory = "internal"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)

// PortalError is the structured error every portal operation reports.
// Message is what the operator sees; Details and Context go to the log.
type PortalError struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"cause,omitempty"`
	Recoverable bool                   `json:"recoverable"`
	UserAction  string                 `json:"userAction,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *PortalError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// Unwrap implements the error unwrapping interface
func (e *PortalError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for error chains
func (e *PortalError) Is(target error) bool {
	if t, ok := target.(*PortalError); ok {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// WithContext adds contextual information to the error
func (e *PortalError) WithContext(key string, value interface{}) *PortalError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause of this error
func (e *PortalError) WithCause(cause error) *PortalError {
	e.Cause = cause
	return e
}

// WithUserAction sets a suggested user action for resolving the error
func (e *PortalError) WithUserAction(action string) *PortalError {
	e.UserAction = action
	return e
}

// WithSeverity sets the severity level
func (e *PortalError) WithSeverity(severity ErrorSeverity) *PortalError {
	e.Severity = severity
	return e
}

// WithDetails adds additional details to the error
func (e *PortalError) WithDetails(details string) *PortalError {
	e.Details = details
	return e
}

// AsRecoverable marks the error as recoverable
func (e *PortalError) AsRecoverable() *PortalError {
	e.Recoverable = true
	return e
}

// IsCategory checks if the error belongs to a specific category
func (e *PortalError) IsCategory(category ErrorCategory) bool {
	return e.Category == category
}

// IsCode checks if the error has a specific code
func (e *PortalError) IsCode(code string) bool {
	return e.Code == code
}

// New creates a new PortalError with the specified parameters
func New(category ErrorCategory, code, message string) *PortalError {
	return &PortalError{
		Category:  category,
		Severity:  SeverityMedium,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap creates a new PortalError that wraps an existing error
func Wrap(err error, category ErrorCategory, code, message string) *PortalError {
	return New(category, code, message).WithCause(err)
}

// ValidationError is reported inline before any network call happens.
func ValidationError(code, message string) *PortalError {
	return New(ErrorValidation, code, message).
		WithSeverity(SeverityLow).
		AsRecoverable().
		WithUserAction("Adjust the selection and try again")
}

// ConfigError creates a configuration-related error
func ConfigError(code, message string) *PortalError {
	return New(ErrorConfig, code, message).
		WithSeverity(SeverityHigh).
		WithUserAction("Please check your kubeportal configuration")
}

// TimeoutError creates a timeout-related error
func TimeoutError(code, message string) *PortalError {
	return New(ErrorTimeout, code, message).
		AsRecoverable().
		WithUserAction("The operation timed out. Please try again")
}

// ConvertError lifts a plain error into a PortalError, keeping an existing
// PortalError anywhere in the chain as-is.
func ConvertError(err error, category ErrorCategory, code string) *PortalError {
	if err == nil {
		return nil
	}
	var pe *PortalError
	if errors.As(err, &pe) {
		return pe
	}
	return Wrap(err, category, code, err.Error())
}

// As finds the first PortalError in err's chain.
func As(err error) (*PortalError, bool) {
	var pe *PortalError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
