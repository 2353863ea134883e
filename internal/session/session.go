// Package session runs one interactive chat: it opens the transport, snapshots the
// node directory, relays inbound text and broadcasts operator input until the
// operator exits, input ends or the context is cancelled.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rmacdonaldsmith/meshchat-go/internal/messaging"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/directory"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

// State is the session lifecycle stage.
type State int

const (
	Initializing State = iota
	Listening
	Terminated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "Initializing"
	case Listening:
		return "Listening"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	cmdExit = "exit"
	cmdList = "list"

	maxLineBytes = 64 * 1024
)

var (
	// ErrNotListening is returned by Run before Start or after Close
	ErrNotListening = errors.New("session is not listening")
	// ErrClosed is returned when starting a closed session
	ErrClosed = errors.New("session is closed")
)

// Session owns the directory, the transport and the audit logger for one run.
type Session struct {
	mu     sync.RWMutex
	config *Config
	log    zerolog.Logger

	state    State
	tr       transport.Transport
	dir      *directory.Directory
	receiver *messaging.Receiver
	sender   *messaging.Sender
	sub      transport.Subscription

	closeOnce sync.Once
	closeErr  error
}

// New creates a session. Call Start to open the transport.
func New(config *Config) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Session{
		config: config,
		log:    log.With().Str("component", "session").Str("endpoint", config.Endpoint).Logger(),
		state:  Initializing,
	}, nil
}

// Start opens the transport, builds and prints the node directory and subscribes
// the receiver. Transport failures are returned as *transport.TransportError and
// leave nothing open.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Listening:
		return nil
	case Terminated:
		return ErrClosed
	}

	display := s.config.Display
	display.Info("Using radio: %s", s.config.Endpoint)

	tr, err := s.config.Opener(ctx, s.config.Endpoint)
	if err != nil {
		return s.transportError(err)
	}

	records, err := tr.Nodes(ctx)
	if err != nil {
		tr.Close()
		return s.transportError(fmt.Errorf("read node database: %w", err))
	}

	dir := directory.Build(records)
	display.Directory(dir.List())

	var logger auditlog.Logger = auditlog.Discard
	if s.config.Logger != nil {
		logger = s.config.Logger
	}
	receiver := messaging.NewReceiver(dir, display, logger)

	sub, err := tr.Subscribe(receiver.Handle)
	if err != nil {
		tr.Close()
		return s.transportError(fmt.Errorf("subscribe: %w", err))
	}

	s.tr = tr
	s.dir = dir
	s.receiver = receiver
	s.sender = messaging.NewSender(tr, display, logger)
	s.sub = sub
	s.state = Listening

	s.log.Info().Int("nodes", dir.Len()).Msg("session listening")
	display.Info("Listening for messages.")
	return nil
}

func (s *Session) transportError(err error) error {
	var te *transport.TransportError
	if !errors.As(err, &te) {
		te = &transport.TransportError{Endpoint: s.config.Endpoint, Err: err}
	}
	s.log.Error().Err(te).Msg("transport failed")
	return te
}

// Run reads operator lines until "exit", end of input or ctx cancellation. It
// returns nil on exit and end of input, and ctx.Err() when cancelled. Send
// failures are displayed and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	s.mu.RLock()
	state, sender, dir := s.state, s.sender, s.dir
	s.mu.RUnlock()

	if state != Listening {
		return ErrNotListening
	}

	display := s.config.Display
	lines, readErr := s.readLines(ctx)

	for {
		display.Prompt()

		var line string
		select {
		case <-ctx.Done():
			display.Info("\nSession terminated by user.")
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				return nil
			}
			line = l
		}

		command := strings.TrimSpace(line)
		switch {
		case command == "":
			continue
		case strings.EqualFold(command, cmdExit):
			display.Info("Exiting...")
			return nil
		case strings.EqualFold(command, cmdList):
			display.Directory(dir.List())
		default:
			if err := sender.Send(ctx, line); err != nil {
				s.log.Debug().Err(err).Msg("send failed, continuing")
			}
		}
	}
}

// readLines feeds input lines to the returned channel until input ends or ctx is
// done. The reader goroutine may stay blocked in Read until the process exits.
func (s *Session) readLines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(s.config.Input)
		scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSuffix(scanner.Text(), "\r"):
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// Close unsubscribes the receiver, releases the transport and drains the audit
// logger. It is safe to call on every exit path, any number of times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		sub, tr := s.sub, s.tr
		s.state = Terminated
		s.mu.Unlock()

		var errs []error
		if sub != nil {
			sub.Unsubscribe()
		}
		if tr != nil {
			if err := tr.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close transport: %w", err))
			}
		}
		if s.config.Logger != nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.config.CloseTimeout)
			if err := s.config.Logger.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("close audit log: %w", err))
			}
			cancel()
		}

		s.closeErr = errors.Join(errs...)
		s.log.Debug().Err(s.closeErr).Msg("session closed")
	})
	return s.closeErr
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Directory returns the node directory, or nil before Start.
func (s *Session) Directory() *directory.Directory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Receiver returns the message receiver, or nil before Start.
func (s *Session) Receiver() *messaging.Receiver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receiver
}
