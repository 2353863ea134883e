// Package discovery finds radio endpoints the client can connect to and lets the
// user pick one.
package discovery

import (
	"context"
	"errors"
)

// ErrNoEndpoints is returned when no endpoint could be found
var ErrNoEndpoints = errors.New("no radio endpoints found")

// Endpoint is something a transport can be opened on: a serial device path or a
// tcp:// address.
type Endpoint struct {
	Name        string
	Description string
}

// Discovery defines the interface for endpoint discovery mechanisms
type Discovery interface {
	// FindEndpoints discovers and returns available endpoints
	FindEndpoints(ctx context.Context) ([]Endpoint, error)
}
