package auditlog

import (
	"io"
)

// Store is an append-only sink of formatted log lines.
// Each Append must be atomic: concurrent appends never interleave partial lines.
type Store interface {
	io.Closer

	// Append writes one complete line, including its trailing newline.
	Append(line string) error
}

// Logger accepts entries for asynchronous writing.
// Append must never block the caller on storage I/O and never reports failures.
type Logger interface {
	Append(entry Entry)
}

// Discard is a Logger that drops every entry.
var Discard Logger = discard{}

type discard struct{}

func (discard) Append(Entry) {}
