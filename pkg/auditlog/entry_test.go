package auditlog

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFormatLine(t *testing.T) {
	ts := time.Date(2024, 5, 1, 18, 22, 3, 999, time.Local)
	line := FormatLine(Entry{Timestamp: ts, Label: "AB", Text: "hi"})

	if line != "2024-05-01 18:22:03 - AB: hi\n" {
		t.Errorf("Unexpected line %q", line)
	}
}

func TestFormatLine_SingleLine(t *testing.T) {
	line := FormatLine(Entry{Timestamp: time.Now(), Label: "A\nB", Text: "one\r\ntwo\nthree\rfour"})

	if strings.Count(line, "\n") != 1 || !strings.HasSuffix(line, "\n") {
		t.Errorf("Expected exactly one trailing newline, got %q", line)
	}
	if strings.Contains(line, "\r") {
		t.Errorf("Expected carriage returns to be removed, got %q", line)
	}
	if !strings.HasSuffix(line, "A B: one two three four\n") {
		t.Errorf("Unexpected rewritten content %q", line)
	}
}

func TestParseLine_RoundTrip(t *testing.T) {
	original := Entry{
		Timestamp: time.Date(2024, 5, 1, 18, 22, 3, 0, time.Local),
		Label:     SentLabel,
		Text:      "meet at 10: bring radios",
	}

	parsed, err := ParseLine(FormatLine(original))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if parsed.Label != original.Label {
		t.Errorf("Expected label %q, got %q", original.Label, parsed.Label)
	}
	if parsed.Text != original.Text {
		t.Errorf("Expected text %q, got %q", original.Text, parsed.Text)
	}
	if !parsed.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Expected timestamp %v, got %v", original.Timestamp, parsed.Timestamp)
	}
}

func TestParseLine_Malformed(t *testing.T) {
	for _, line := range []string{
		"",
		"no separator here",
		"yesterday - AB: hi",
		"2024-05-01 18:22:03 - no label",
	} {
		if _, err := ParseLine(line); !errors.Is(err, ErrMalformedLine) {
			t.Errorf("ParseLine(%q): expected ErrMalformedLine, got %v", line, err)
		}
	}
}

func TestNewSentEntry(t *testing.T) {
	e := NewSentEntry("hello")
	if e.Label != "Sent" {
		t.Errorf("Expected label Sent, got %s", e.Label)
	}
	if time.Since(e.Timestamp) > time.Second {
		t.Error("Expected timestamp to be recent")
	}
}

func TestParseLine_LabelWithColon(t *testing.T) {
	ts := time.Date(2024, 5, 1, 18, 22, 3, 0, time.Local)

	tests := []struct {
		label     string
		wantLabel string
	}{
		{label: "A: B", wantLabel: "A:B"},
		{label: "A:  B", wantLabel: "A:B"},
		{label: "AB:", wantLabel: "AB:"},
		{label: "A:B", wantLabel: "A:B"},
	}

	for _, tt := range tests {
		parsed, err := ParseLine(FormatLine(Entry{Timestamp: ts, Label: tt.label, Text: "hi: there"}))
		if err != nil {
			t.Fatalf("label %q: unexpected error %v", tt.label, err)
		}
		if parsed.Label != tt.wantLabel {
			t.Errorf("label %q: expected parsed label %q, got %q", tt.label, tt.wantLabel, parsed.Label)
		}
		if parsed.Text != "hi: there" {
			t.Errorf("label %q: expected text %q, got %q", tt.label, "hi: there", parsed.Text)
		}
	}
}
