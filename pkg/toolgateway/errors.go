package toolgateway

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned for operations on a closed client.
	ErrClosed = errors.New("tool gateway: client is closed")
	// ErrNoTextContent is returned when a tool result carries no text element.
	ErrNoTextContent = errors.New("tool result has no text content")
)

// ConnectionError reports that the tool server could not be reached or initialized.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to tool server %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// InvocationError reports a failed tool call.
type InvocationError struct {
	Tool string
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("call tool %s: %v", e.Tool, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }
