package auditlog

import (
	"errors"
	"sync"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
)

// ErrStoreClosed is returned when appending to a closed store
var ErrStoreClosed = errors.New("audit store closed")

// MemoryStore implements auditlog.Store in memory.
// It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	lines  []string
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lines: make([]string, 0),
	}
}

// Append stores one line.
func (s *MemoryStore) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.lines = append(s.lines, line)
	return nil
}

// Lines returns a copy of every stored line in append order.
func (s *MemoryStore) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.lines...)
}

// Entries parses every stored line. Lines that do not parse are skipped.
func (s *MemoryStore) Entries() []auditlog.Entry {
	lines := s.Lines()
	entries := make([]auditlog.Entry, 0, len(lines))
	for _, line := range lines {
		if e, err := auditlog.ParseLine(line); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

// Len returns the number of stored lines.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Close marks the store closed. Stored lines remain readable.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Verify that MemoryStore implements the Store interface at compile time
var _ auditlog.Store = (*MemoryStore)(nil)
