package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rmacdonaldsmith/meshchat-go/internal/messaging"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/directory"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

var (
	// ErrEmptyEndpoint is returned when no endpoint is configured
	ErrEmptyEndpoint = errors.New("endpoint cannot be empty")
	// ErrNilOpener is returned when no transport opener is configured
	ErrNilOpener = errors.New("transport opener cannot be nil")
	// ErrNilInput is returned when no input reader is configured
	ErrNilInput = errors.New("input cannot be nil")
	// ErrNilDisplay is returned when no display is configured
	ErrNilDisplay = errors.New("display cannot be nil")
)

// Display is the console the session writes to.
type Display interface {
	messaging.Display
	Info(format string, args ...any)
	Directory(nodes []directory.Identity)
	Prompt()
}

// AuditLogger is an audit logger the session owns and closes on teardown.
type AuditLogger interface {
	auditlog.Logger
	Close(ctx context.Context) error
}

// Config represents configuration for a Session
type Config struct {
	// Endpoint is passed to Opener
	Endpoint string

	// Opener opens the transport during Start
	Opener transport.Opener

	// Input supplies operator lines
	Input io.Reader

	// Display receives every operator-visible line
	Display Display

	// Logger records messages; nil disables the audit log
	Logger AuditLogger

	// CloseTimeout bounds how long Close waits for queued audit entries
	CloseTimeout time.Duration
}

// NewConfig creates a new Session configuration with safe defaults
func NewConfig(endpoint string, opener transport.Opener, input io.Reader, display Display) *Config {
	return &Config{
		Endpoint:     endpoint,
		Opener:       opener,
		Input:        input,
		Display:      display,
		CloseTimeout: 2 * time.Second,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ErrEmptyEndpoint
	}
	if c.Opener == nil {
		return ErrNilOpener
	}
	if c.Input == nil {
		return ErrNilInput
	}
	if c.Display == nil {
		return ErrNilDisplay
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = 2 * time.Second
	}
	return nil
}

// WithLogger sets the audit logger
func (c *Config) WithLogger(logger AuditLogger) *Config {
	c.Logger = logger
	return c
}

// WithCloseTimeout sets how long Close waits for the audit logger to drain
func (c *Config) WithCloseTimeout(d time.Duration) *Config {
	c.CloseTimeout = d
	return c
}
