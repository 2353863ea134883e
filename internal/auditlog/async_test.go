package auditlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
)

// gatedStore blocks every Append until release is closed.
type gatedStore struct {
	*MemoryStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *gatedStore) Append(line string) error {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return s.MemoryStore.Append(line)
}

type failingStore struct {
	closed bool
}

func (s *failingStore) Append(string) error { return errors.New("disk full") }
func (s *failingStore) Close() error        { s.closed = true; return nil }

func closeLogger(t *testing.T, l *AsyncLogger) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Close(ctx))
}

func TestAsyncLogger_WritesFormattedLines(t *testing.T) {
	store := NewMemoryStore()
	logger := New(store, Config{})

	ts := time.Date(2024, 5, 1, 18, 22, 3, 0, time.Local)
	logger.Append(auditlog.Entry{Timestamp: ts, Label: "AB", Text: "hi"})
	logger.Append(auditlog.Entry{Timestamp: ts, Label: auditlog.SentLabel, Text: "hello"})
	closeLogger(t, logger)

	assert.Equal(t, []string{
		"2024-05-01 18:22:03 - AB: hi\n",
		"2024-05-01 18:22:03 - Sent: hello\n",
	}, store.Lines())

	stats := logger.Stats()
	assert.Equal(t, int64(2), stats.Submitted)
	assert.Equal(t, int64(2), stats.Written)
	assert.Zero(t, stats.Dropped)
}

func TestAsyncLogger_AppendNeverBlocks(t *testing.T) {
	store := newGatedStore()
	logger := New(store, Config{QueueSize: 1})

	logger.Append(auditlog.NewEntry("A", "first"))
	<-store.entered // worker is now stuck inside the store

	start := time.Now()
	logger.Append(auditlog.NewEntry("B", "queued"))
	logger.Append(auditlog.NewEntry("C", "dropped"))
	assert.Less(t, time.Since(start), time.Second, "Append must not wait on the store")

	close(store.release)
	closeLogger(t, logger)

	stats := logger.Stats()
	assert.Equal(t, int64(2), stats.Written)
	assert.Equal(t, int64(1), stats.Dropped)

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Text)
	assert.Equal(t, "queued", entries[1].Text)
}

func TestAsyncLogger_StoreFailureSwallowed(t *testing.T) {
	store := &failingStore{}
	logger := New(store, Config{})

	assert.NotPanics(t, func() {
		logger.Append(auditlog.NewEntry("AB", "hi"))
	})
	closeLogger(t, logger)

	assert.Equal(t, int64(1), logger.Stats().Failed)
	assert.Zero(t, logger.Stats().Written)
	assert.True(t, store.closed)
}

func TestAsyncLogger_CloseIsIdempotentAndRejectsLateEntries(t *testing.T) {
	store := NewMemoryStore()
	logger := New(store, Config{})

	closeLogger(t, logger)
	closeLogger(t, logger)

	logger.Append(auditlog.NewEntry("late", "entry"))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int64(1), logger.Stats().Dropped)
}

func TestAsyncLogger_CloseHonoursContext(t *testing.T) {
	store := newGatedStore()
	logger := New(store, Config{})

	logger.Append(auditlog.NewEntry("A", "stuck"))
	<-store.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := logger.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(store.release)
}

func TestAsyncLogger_ConcurrentAppendsStayWhole(t *testing.T) {
	store := NewMemoryStore()
	logger := New(store, Config{QueueSize: 1000})

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				logger.Append(auditlog.NewEntry(fmt.Sprintf("N%d", g), fmt.Sprintf("msg %d", i)))
			}
		}(g)
	}
	wg.Wait()
	closeLogger(t, logger)

	lines := store.Lines()
	assert.Len(t, lines, 500)
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, "\n"))
		_, err := auditlog.ParseLine(line)
		assert.NoError(t, err)
	}
}
