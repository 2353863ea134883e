package auditlog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
)

// Config holds configuration for AsyncLogger
type Config struct {
	// QueueSize bounds the number of entries waiting to be written
	QueueSize int
}

// SetDefaults sets sensible default values for unset configuration fields
func (c *Config) SetDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
}

// Stats counts what happened to submitted entries.
type Stats struct {
	Submitted int64 // accepted onto the queue
	Written   int64 // appended to the store
	Dropped   int64 // rejected because the queue was full or the logger closed
	Failed    int64 // store append returned an error
}

// AsyncLogger writes entries to a Store from a single background worker.
//
// Append never blocks: entries go onto a bounded queue and are dropped when the
// queue is full. Store failures are counted and otherwise ignored, so the audit
// trail is best effort and can never stall or break messaging.
type AsyncLogger struct {
	store auditlog.Store
	queue chan auditlog.Entry
	done  chan struct{}

	mu     sync.RWMutex // guards closed and sends on queue
	closed bool

	submitted atomic.Int64
	written   atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64

	warn zerolog.Logger
}

// New starts an AsyncLogger writing to store.
func New(store auditlog.Store, config Config) *AsyncLogger {
	config.SetDefaults()

	l := &AsyncLogger{
		store: store,
		queue: make(chan auditlog.Entry, config.QueueSize),
		done:  make(chan struct{}),
		warn: log.With().Str("component", "auditlog").Logger().
			Sample(&zerolog.BasicSampler{N: 50}),
	}

	go l.run()

	return l
}

// Append queues entry for writing and returns immediately.
func (l *AsyncLogger) Append(entry auditlog.Entry) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		l.dropped.Add(1)
		return
	}

	select {
	case l.queue <- entry:
		l.submitted.Add(1)
	default:
		l.dropped.Add(1)
		l.warn.Warn().Int64("dropped", l.dropped.Load()).Msg("audit queue full, dropping entry")
	}
}

func (l *AsyncLogger) run() {
	defer close(l.done)

	for entry := range l.queue {
		if err := l.store.Append(auditlog.FormatLine(entry)); err != nil {
			l.failed.Add(1)
			l.warn.Warn().Err(err).Msg("audit log write failed")
			continue
		}
		l.written.Add(1)
	}
}

// Stats returns a snapshot of the logger's counters.
func (l *AsyncLogger) Stats() Stats {
	return Stats{
		Submitted: l.submitted.Load(),
		Written:   l.written.Load(),
		Dropped:   l.dropped.Load(),
		Failed:    l.failed.Load(),
	}
}

// Close stops accepting entries, waits for queued entries to be written until ctx
// is done, then closes the store. Safe to call multiple times.
func (l *AsyncLogger) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	var drainErr error
	select {
	case <-l.done:
	case <-ctx.Done():
		drainErr = ctx.Err()
	}

	return errors.Join(drainErr, l.store.Close())
}

// Verify that AsyncLogger implements the Logger interface at compile time
var _ auditlog.Logger = (*AsyncLogger)(nil)
