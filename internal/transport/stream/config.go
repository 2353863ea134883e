package stream

import (
	"errors"
	"time"
)

// Config holds configuration for a stream Client
type Config struct {
	// Endpoint names the link in errors and logs
	Endpoint string

	// Channel is the channel index outbound text is sent on (0 = primary)
	Channel uint32

	// HopLimit is the hop limit stamped on outbound packets
	HopLimit uint32

	// WantAck requests a mesh-level acknowledgement for outbound packets
	WantAck bool

	// BaudRate is used when the endpoint is a serial device
	BaudRate int

	// ConfigTimeout bounds the initial node database download
	ConfigTimeout time.Duration

	// HeartbeatInterval keeps the radio's client session alive (negative disables)
	HeartbeatInterval time.Duration

	// WriteTimeout bounds a single frame write when the link supports deadlines
	WriteTimeout time.Duration

	// WakeDelay is how long to wait after the wake sequence
	WakeDelay time.Duration
}

// SetDefaults sets sensible default values for unset configuration fields
func (c *Config) SetDefaults() {
	if c.HopLimit == 0 {
		c.HopLimit = 3
	}
	if c.BaudRate <= 0 {
		c.BaudRate = 115200
	}
	if c.ConfigTimeout <= 0 {
		c.ConfigTimeout = 30 * time.Second
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 5 * time.Minute
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.WakeDelay <= 0 {
		c.WakeDelay = 100 * time.Millisecond
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Channel > 7 {
		return errors.New("channel index must be between 0 and 7")
	}
	if c.HopLimit > 7 {
		return errors.New("hop limit must be between 0 and 7")
	}
	return nil
}
