package auditlog

import (
	"errors"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
)

// DefaultPath is the log file used when none is configured.
const DefaultPath = "message_log.txt"

// FileConfig configures a FileStore.
type FileConfig struct {
	// Path of the active log file
	Path string

	// MaxSizeMB rotates the file once it reaches this size (0 = 100MB)
	MaxSizeMB int

	// MaxBackups limits how many rotated files are kept (0 = keep all)
	MaxBackups int

	// MaxAgeDays removes rotated files older than this (0 = never)
	MaxAgeDays int

	// Compress gzips rotated files
	Compress bool
}

// Validate checks if the configuration is valid
func (c *FileConfig) Validate() error {
	if c.Path == "" {
		return errors.New("audit log path cannot be empty")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return errors.New("audit log rotation limits cannot be negative")
	}
	return nil
}

// FileStore appends lines to a file, rotating it by size.
// Rotated files are renamed, never rewritten; with the zero rotation limits every
// file is kept. Appends are serialised so lines never interleave.
type FileStore struct {
	mu     sync.Mutex
	w      *lumberjack.Logger
	closed bool
}

// NewFileStore creates a store for cfg.Path. The file is opened lazily on the first
// append, so an unwritable path surfaces as Append errors rather than here.
func NewFileStore(cfg FileConfig) (*FileStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &FileStore{
		w: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		},
	}, nil
}

// Append writes one line to the file.
func (s *FileStore) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	_, err := s.w.Write([]byte(line))
	return err
}

// Path returns the active log file path.
func (s *FileStore) Path() string {
	return s.w.Filename
}

// Close closes the underlying file. Safe to call multiple times.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.w.Close()
}

// Verify that FileStore implements the Store interface at compile time
var _ auditlog.Store = (*FileStore)(nil)
