package messaging

import (
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/directory"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

// Display is the operator-facing output used by both message paths.
type Display interface {
	Incoming(label, text string)
	Outgoing(text string)
	Error(format string, args ...any)
}

// Resolver maps a node number to its display identity. It must be total.
type Resolver interface {
	Resolve(id transport.NodeID) directory.Identity
}

// Message is a decoded inbound text message.
type Message struct {
	From transport.NodeID
	Text string
}

// Receiver handles inbound packets.
type Receiver struct {
	dir     Resolver
	display Display
	logger  auditlog.Logger
	now     func() time.Time

	delivered atomic.Int64
	discarded atomic.Int64
}

// NewReceiver creates a Receiver. A nil logger discards audit entries.
func NewReceiver(dir Resolver, display Display, logger auditlog.Logger) *Receiver {
	if logger == nil {
		logger = auditlog.Discard
	}
	return &Receiver{
		dir:     dir,
		display: display,
		logger:  logger,
		now:     time.Now,
	}
}

// Decode extracts a text message from pkt. It reports false for anything that is
// not a complete, valid UTF-8 text message; such packets are to be discarded.
func Decode(pkt *transport.Packet) (Message, bool) {
	if pkt == nil || pkt.Decoded == nil || pkt.From == 0 {
		return Message{}, false
	}
	if pkt.Decoded.Port != transport.PortTextMessage {
		return Message{}, false
	}
	if !utf8.Valid(pkt.Decoded.Payload) {
		return Message{}, false
	}
	return Message{From: pkt.From, Text: string(pkt.Decoded.Payload)}, true
}

// Handle processes one inbound packet: decode, resolve, display, then queue the
// audit entry. It satisfies transport.Handler.
func (r *Receiver) Handle(pkt *transport.Packet) {
	msg, ok := Decode(pkt)
	if !ok {
		r.discarded.Add(1)
		if pkt != nil && log.Debug().Enabled() {
			ev := log.Debug().Str("component", "receiver").Stringer("from", pkt.From)
			if pkt.Decoded != nil {
				ev = ev.Stringer("port", pkt.Decoded.Port)
			}
			ev.Msg("discarding packet")
		}
		return
	}

	sender := r.dir.Resolve(msg.From)
	r.display.Incoming(sender.ShortName, msg.Text)
	entry := auditlog.NewEntry(sender.ShortName, msg.Text)
	entry.Timestamp = r.now()
	r.logger.Append(entry)
	r.delivered.Add(1)
}

// Delivered returns how many text messages were displayed.
func (r *Receiver) Delivered() int64 { return r.delivered.Load() }

// Discarded returns how many packets were dropped by Decode.
func (r *Receiver) Discarded() int64 { return r.discarded.Load() }

// Verify that Handle satisfies the transport.Handler signature at compile time
var _ transport.Handler = (*Receiver)(nil).Handle
