// Package loopback provides an in-memory transport.Transport used by tests and by
// the offline demo.
package loopback

import (
	"context"
	"fmt"
	"sync"

	"github.com/rmacdonaldsmith/meshchat-go/internal/transport/fanout"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

// Endpoint is the endpoint name that selects the loopback transport.
const Endpoint = "loopback"

// Options configures a Transport
type Options struct {
	// Nodes is the node database returned by Nodes
	Nodes []transport.NodeRecord

	// Echo re-delivers every broadcast to subscribers as a packet from Self
	Echo bool

	// Self is the sender of echoed packets
	Self transport.NodeID
}

// Transport is a mesh transport that never leaves the process.
type Transport struct {
	opts Options
	hub  *fanout.Hub

	mu         sync.Mutex
	sent       []string
	sendErr    error
	closeCount int
	nextID     uint32
}

// New creates a loopback Transport.
func New(opts Options) *Transport {
	return &Transport{
		opts: opts,
		hub:  fanout.NewHub(),
	}
}

// Nodes returns the configured node records.
func (t *Transport) Nodes(ctx context.Context) ([]transport.NodeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]transport.NodeRecord(nil), t.opts.Nodes...), nil
}

// Subscribe registers handler for injected and echoed packets.
func (t *Transport) Subscribe(handler transport.Handler) (transport.Subscription, error) {
	return t.hub.Subscribe(handler)
}

// Inject delivers pkt to every subscriber on the caller's goroutine.
func (t *Transport) Inject(pkt *transport.Packet) {
	t.hub.Publish(pkt)
}

// InjectText delivers a text packet from the given node.
func (t *Transport) InjectText(from transport.NodeID, text string) {
	t.Inject(&transport.Packet{
		ID:      t.packetID(),
		From:    from,
		To:      transport.BroadcastID,
		Decoded: &transport.Data{Port: transport.PortTextMessage, Payload: []byte(text)},
	})
}

// BroadcastText records text, or fails with the injected send error.
func (t *Transport) BroadcastText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return &transport.SendError{Err: err}
	}
	if len(text) > transport.MaxTextPayload {
		return &transport.SendError{Err: fmt.Errorf("%w: %d bytes", transport.ErrPayloadTooLarge, len(text))}
	}

	t.mu.Lock()
	if t.closeCount > 0 {
		t.mu.Unlock()
		return &transport.SendError{Err: transport.ErrClosed}
	}
	if t.sendErr != nil {
		err := t.sendErr
		t.mu.Unlock()
		return &transport.SendError{Err: err}
	}
	t.sent = append(t.sent, text)
	t.mu.Unlock()

	if t.opts.Echo {
		t.InjectText(t.opts.Self, text)
	}
	return nil
}

// FailSends makes every following broadcast fail with err. A nil err clears it.
func (t *Transport) FailSends(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
}

// Sent returns the texts broadcast so far.
func (t *Transport) Sent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent...)
}

// Close releases subscribers. It counts every call so tests can check the link
// is released exactly once.
func (t *Transport) Close() error {
	t.mu.Lock()
	t.closeCount++
	first := t.closeCount == 1
	t.mu.Unlock()

	if first {
		t.hub.Close()
	}
	return nil
}

// CloseCount returns how many times Close was called.
func (t *Transport) CloseCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeCount
}

// Subscribers returns the number of active subscriptions.
func (t *Transport) Subscribers() int {
	return t.hub.Len()
}

func (t *Transport) packetID() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	return t.nextID
}

// Verify that Transport implements the Transport interface at compile time
var _ transport.Transport = (*Transport)(nil)
