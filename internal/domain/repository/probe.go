package repository

import (
	"context"
	"fmt"
)

// ConnectionResult is the transient record returned by a single connectivity check.
// Model is meaningful when Success is true, Error when it is false.
type ConnectionResult struct {
	Success bool
	Model   string
	Error   string
}

// Succeeded builds a successful result for the given model identifier.
func Succeeded(model string) ConnectionResult {
	return ConnectionResult{Success: true, Model: model}
}

// Failed builds a result for a failure the service itself reported.
func Failed(reason string) ConnectionResult {
	return ConnectionResult{Success: false, Error: reason}
}

// ConnectionTester is implemented by every external AI service the prober can check.
type ConnectionTester interface {
	// TestConnection performs one round trip against the service.
	// A non-nil error means the call itself could not complete.
	TestConnection(ctx context.Context) (ConnectionResult, error)
	Name() string
}

// TransportError wraps a failure to reach the service at all.
type TransportError struct {
	Target string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Target == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Target, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
