package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

// Sender broadcasts operator text to every node.
type Sender struct {
	tr      transport.Broadcaster
	display Display
	logger  auditlog.Logger
	now     func() time.Time
}

// NewSender creates a Sender. A nil logger discards audit entries.
func NewSender(tr transport.Broadcaster, display Display, logger auditlog.Logger) *Sender {
	if logger == nil {
		logger = auditlog.Discard
	}
	return &Sender{
		tr:      tr,
		display: display,
		logger:  logger,
		now:     time.Now,
	}
}

// Send broadcasts text. On success the message is displayed and logged. On failure
// the error is displayed, nothing is logged, and a *transport.SendError is returned
// for the caller's information only.
func (s *Sender) Send(ctx context.Context, text string) error {
	if err := s.tr.BroadcastText(ctx, text); err != nil {
		var sendErr *transport.SendError
		if !errors.As(err, &sendErr) {
			sendErr = &transport.SendError{Err: err}
		}
		s.display.Error("Error sending message: %v", sendErr.Err)
		log.Debug().Str("component", "sender").Err(err).Msg("broadcast failed")
		return sendErr
	}

	s.display.Outgoing(text)
	entry := auditlog.NewSentEntry(text)
	entry.Timestamp = s.now()
	s.logger.Append(entry)
	return nil
}
