package auditlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message_log.txt")
	store, err := NewFileStore(FileConfig{Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	logger := New(store, Config{})
	logger.Append(auditlog.NewEntry("AB", "hi"))
	logger.Append(auditlog.NewSentEntry("hello there"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, logger.Close(ctx))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " - AB: hi"))
	assert.True(t, strings.HasSuffix(lines[1], " - Sent: hello there"))

	entries, err := ReadTail(path, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "AB", entries[0].Label)
	assert.Equal(t, "hi", entries[0].Text)
	assert.WithinDuration(t, time.Now(), entries[0].Timestamp, time.Minute)
}

func TestFileStore_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-01 00:00:00 - OLD: kept\n"), 0o644))

	store, err := NewFileStore(FileConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Append("2024-01-01 00:00:01 - NEW: added\n"))
	require.NoError(t, store.Close())

	entries, err := ReadTail(path, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "OLD", entries[0].Label)
	assert.Equal(t, "NEW", entries[1].Label)
}

func TestFileStore_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	store, err := NewFileStore(FileConfig{Path: path})
	require.NoError(t, err)

	line := auditlog.FormatLine(auditlog.NewEntry("AB", strings.Repeat("x", 200)))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				assert.NoError(t, store.Append(line))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, store.Close())

	entries, err := ReadTail(path, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 200)
}

func TestFileStore_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	store, err := NewFileStore(FileConfig{Path: filepath.Join(blocker, "log.txt")})
	require.NoError(t, err, "the file is opened lazily")

	logger := New(store, Config{})
	logger.Append(auditlog.NewEntry("AB", "hi"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, logger.Close(ctx))
	assert.Equal(t, int64(1), logger.Stats().Failed)
}

func TestFileStore_AppendAfterClose(t *testing.T) {
	store, err := NewFileStore(FileConfig{Path: filepath.Join(t.TempDir(), "log.txt")})
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Append("line\n"), ErrStoreClosed)
}

func TestFileConfig_Validate(t *testing.T) {
	_, err := NewFileStore(FileConfig{})
	assert.Error(t, err)

	_, err = NewFileStore(FileConfig{Path: "x.log", MaxBackups: -1})
	assert.Error(t, err)
}

func TestReadTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString(auditlog.FormatLine(auditlog.Entry{
			Timestamp: time.Date(2024, 1, 1, 0, 0, i, 0, time.Local),
			Label:     "N",
			Text:      string(rune('a' + i)),
		}))
		if i == 4 {
			b.WriteString("garbage line\n")
		}
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	entries, err := ReadTail(path, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "h", entries[0].Text)
	assert.Equal(t, "j", entries[2].Text)

	all, err := ReadTail(path, 0)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	_, err = ReadTail(filepath.Join(t.TempDir(), "missing.txt"), 5)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
