// Package auditlog provides interfaces for the append-only message audit trail.
//
// This package defines the core abstractions for meshchat's message log:
//   - Entry: one timestamped, labelled line of conversation (received or sent)
//   - Store: an append-only line sink (a file, or memory in tests)
//   - Logger: the fire-and-forget submission side used by the message paths
//
// Entries are write-once. Nothing in meshchat rewrites or deletes a logged line.
//
// Line format:
//
//	2024-05-01 18:22:03 - AB: hello from the hill
//	2024-05-01 18:22:41 - Sent: hi back
//
// Example usage:
//
//	logger.Append(auditlog.NewEntry("AB", "hello from the hill"))
//
//	entry, err := auditlog.ParseLine(line)
//	if err != nil {
//		return err
//	}
package auditlog
