package context

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/darksworm/kubeportal/pkg/errors"
)

// TimeoutConfig holds timeout configuration for different operations
type TimeoutConfig struct {
	Default  time.Duration
	API      time.Duration
	Mutation time.Duration
}

// DefaultTimeouts are the Fetcher defaults. The portal has no timeout of its
// own; a hung call is bounded only by these.
var DefaultTimeouts = TimeoutConfig{
	Default:  10 * time.Second,
	API:      30 * time.Second,
	Mutation: 60 * time.Second, // deletes cascade through several backends
}

// OperationType represents different types of operations that need timeouts
type OperationType string

const (
	OpDefault  OperationType = "default"
	OpAPI      OperationType = "api"
	OpMutation OperationType = "mutation"
)

// SetRequestTimeout overrides the network timeouts from configuration.
// Non-positive values are ignored.
func SetRequestTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	DefaultTimeouts.API = d
	if DefaultTimeouts.Mutation < d {
		DefaultTimeouts.Mutation = d
	}
}

// WithTimeout creates a context with timeout based on operation type
func WithTimeout(parent context.Context, opType OperationType) (context.Context, context.CancelFunc) {
	timeout := getTimeoutForOperation(opType)
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func getTimeoutForOperation(opType OperationType) time.Duration {
	switch opType {
	case OpAPI:
		return DefaultTimeouts.API
	case OpMutation:
		return DefaultTimeouts.Mutation
	default:
		return DefaultTimeouts.Default
	}
}

// HandleTimeout converts a context timeout error to a structured error
func HandleTimeout(ctx context.Context, opType OperationType) *apperrors.PortalError {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.TimeoutError(
			"OPERATION_TIMEOUT",
			fmt.Sprintf("Operation timed out after %v", getTimeoutForOperation(opType)),
		).WithContext("operation", string(opType))
	case errors.Is(ctx.Err(), context.Canceled):
		return apperrors.New(
			apperrors.ErrorInternal,
			"OPERATION_CANCELED",
			"Operation was canceled",
		).WithContext("operation", string(opType))
	}
	return nil
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pe, ok := apperrors.As(err); ok {
		return pe.IsCategory(apperrors.ErrorTimeout)
	}
	return false
}

// IsCanceled reports whether err comes from a cancelled operation, such as
// an environment switch or teardown.
func IsCanceled(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	if pe, ok := apperrors.As(err); ok {
		return pe.IsCode("OPERATION_CANCELED")
	}
	return false
}

// WithAPITimeout creates a context specifically for API reads
func WithAPITimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpAPI)
}

// WithMutationTimeout creates a context for delete calls
func WithMutationTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpMutation)
}
