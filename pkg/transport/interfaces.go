package transport

import (
	"context"
	"io"
)

// MaxTextPayload is the largest text payload, in bytes, a single mesh packet can carry.
const MaxTextPayload = 233

// Handler receives inbound packets. It is called from the transport's delivery
// goroutine and must not block for long.
type Handler func(pkt *Packet)

// Subscription is the handle returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops delivery to the handler. Safe to call more than once.
	Unsubscribe()
}

// Broadcaster sends text to every node on the mesh.
type Broadcaster interface {
	// BroadcastText queues text for transmission to all nodes.
	// Failures are reported as *SendError.
	BroadcastText(ctx context.Context, text string) error
}

// Transport is an open link to a mesh radio.
type Transport interface {
	io.Closer
	Broadcaster

	// Nodes returns the radio's node database as seen when the link was opened.
	Nodes(ctx context.Context) ([]NodeRecord, error)

	// Subscribe registers handler for every inbound packet.
	Subscribe(handler Handler) (Subscription, error)
}

// Opener opens a transport for an endpoint (serial device path, tcp:// address, ...).
// Failures are reported as *TransportError.
type Opener func(ctx context.Context, endpoint string) (Transport, error)

// SubscriptionFunc adapts a plain function to the Subscription interface.
type SubscriptionFunc func()

// Unsubscribe calls f.
func (f SubscriptionFunc) Unsubscribe() { f() }
