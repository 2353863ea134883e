package auditlog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the timestamp layout of a log line (second precision, local time).
const TimeLayout = "2006-01-02 15:04:05"

// SentLabel labels entries for messages this client broadcast.
const SentLabel = "Sent"

// ErrMalformedLine is returned by ParseLine for lines not produced by FormatLine
var ErrMalformedLine = errors.New("malformed log line")

// Entry is one line of the audit trail.
type Entry struct {
	Timestamp time.Time
	Label     string
	Text      string
}

// NewEntry creates an Entry stamped with the current time.
func NewEntry(label, text string) Entry {
	return Entry{
		Timestamp: time.Now(),
		Label:     label,
		Text:      text,
	}
}

// NewSentEntry creates an Entry for an outbound message.
func NewSentEntry(text string) Entry {
	return NewEntry(SentLabel, text)
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FormatLine renders e as a single newline-terminated log line.
// Embedded line breaks are replaced by spaces so an entry never spans two lines,
// and ": " inside the label is collapsed to ":" so the first ": " of the line always
// ends the label.
func FormatLine(e Entry) string {
	return fmt.Sprintf("%s - %s: %s\n",
		e.Timestamp.Format(TimeLayout),
		normalizeLabel(e.Label),
		lineBreaks.Replace(e.Text),
	)
}

// normalizeLabel returns label as FormatLine writes it.
func normalizeLabel(label string) string {
	label = lineBreaks.Replace(label)
	for strings.Contains(label, ": ") {
		label = strings.ReplaceAll(label, ": ", ":")
	}
	return label
}

// ParseLine parses a line produced by FormatLine. The trailing newline is optional.
// Labels come back in the form FormatLine wrote them.
// The timestamp is interpreted in the local time zone.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")

	stamp, rest, ok := strings.Cut(line, " - ")
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing separator", ErrMalformedLine)
	}
	ts, err := time.ParseInLocation(TimeLayout, stamp, time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	label, text, ok := strings.Cut(rest, ": ")
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing label", ErrMalformedLine)
	}

	return Entry{Timestamp: ts, Label: label, Text: text}, nil
}
