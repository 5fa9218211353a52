package junos

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrNotConnected       = errors.New("not connected")
	ErrConfigNotOpen      = errors.New("candidate configuration is not open")
	ErrConfigAlreadyOpen  = errors.New("candidate configuration is already open")
	ErrTimeout            = errors.New("read timeout")
	ErrNotAuthenticated   = errors.New("session is not authenticated")
	ErrIncompleteResponse = errors.New("response ended without terminal marker")
	ErrEmptyResponse      = errors.New("empty response")
)

// TransportError is a failure of the session itself: I/O errors, timeouts and
// unusable replies. The session is unusable afterwards and must be reopened.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("junos transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExecutionError is an explicit rejection reported by the appliance.
type ExecutionError struct {
	Op      string
	Message string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("appliance rejected %s: %s", e.Op, e.Message)
}

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsExecutionError reports whether err is (or wraps) an ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
