package stream

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"go.bug.st/serial"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

const (
	// TCPScheme prefixes endpoints reached over the network API
	TCPScheme = "tcp://"

	// DefaultTCPPort is the radio's stream API port
	DefaultTCPPort = "4403"
)

// Dial opens endpoint and performs the client handshake. Endpoints of the form
// tcp://host[:port] are dialled over TCP; anything else is treated as a serial
// device path.
func Dial(ctx context.Context, endpoint string, cfg Config) (*Client, error) {
	cfg.SetDefaults()
	cfg.Endpoint = endpoint

	rwc, err := openLink(ctx, endpoint, cfg)
	if err != nil {
		return nil, &transport.TransportError{Endpoint: endpoint, Err: err}
	}
	return Open(ctx, rwc, cfg)
}

// Opener returns a transport.Opener that dials with cfg.
func Opener(cfg Config) transport.Opener {
	return func(ctx context.Context, endpoint string) (transport.Transport, error) {
		c, err := Dial(ctx, endpoint, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func openLink(ctx context.Context, endpoint string, cfg Config) (io.ReadWriteCloser, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("no endpoint given")
	}

	if addr, ok := strings.CutPrefix(endpoint, TCPScheme); ok {
		return dialTCP(ctx, addr)
	}
	return openSerial(endpoint, cfg.BaudRate)
}

func dialTCP(ctx context.Context, addr string) (net.Conn, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, DefaultTCPPort)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

func openSerial(path string, baud int) (serial.Port, error) {
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return port, nil
}
