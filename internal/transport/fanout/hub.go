// Package fanout delivers inbound packets to every registered handler.
package fanout

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

// ErrNilHandler is returned when subscribing a nil handler
var ErrNilHandler = errors.New("handler cannot be nil")

// Hub is a thread-safe handler registry.
type Hub struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]transport.Handler
	order    []uint64
	closed   bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		handlers: make(map[uint64]transport.Handler),
	}
}

// Subscribe registers handler. Handlers are called in subscription order.
func (h *Hub) Subscribe(handler transport.Handler) (transport.Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, transport.ErrClosed
	}

	id := h.nextID
	h.nextID++
	h.handlers[id] = handler
	h.order = append(h.order, id)

	var once sync.Once
	return transport.SubscriptionFunc(func() {
		once.Do(func() { h.remove(id) })
	}), nil
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.handlers[id]; !ok {
		return
	}
	delete(h.handlers, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Publish calls every handler with pkt on the caller's goroutine. A panicking
// handler is logged and skipped so delivery to the others, and of later packets,
// continues.
func (h *Hub) Publish(pkt *transport.Packet) {
	h.mu.RLock()
	handlers := make([]transport.Handler, 0, len(h.order))
	for _, id := range h.order {
		handlers = append(handlers, h.handlers[id])
	}
	h.mu.RUnlock()

	for _, handler := range handlers {
		deliver(handler, pkt)
	}
}

func deliver(handler transport.Handler, pkt *transport.Packet) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("component", "fanout").Interface("panic", r).Msg("packet handler panicked")
		}
	}()
	handler(pkt)
}

// Len returns the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}

// Close drops every subscription and rejects new ones. Safe to call multiple times.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	h.handlers = make(map[uint64]transport.Handler)
	h.order = nil
}
