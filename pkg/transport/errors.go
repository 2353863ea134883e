package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed transport
	ErrClosed = errors.New("transport closed")
	// ErrPayloadTooLarge is returned when text exceeds MaxTextPayload bytes
	ErrPayloadTooLarge = errors.New("payload too large")
)

// TransportError reports that an endpoint could not be opened or initialised.
// It is the only error kind that terminates a session.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SendError reports a failed broadcast.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
