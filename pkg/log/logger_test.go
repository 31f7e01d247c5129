package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := New("test")
	l.SetWriter(buf)
	l.SetColorize(false)
	return l
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetLevel(WARN)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("DEBUG should be filtered at WARN level")
	}
	if strings.Contains(out, "info message") {
		t.Error("INFO should be filtered at WARN level")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("WARN should pass at WARN level")
	}
	if !strings.Contains(out, "error message") {
		t.Error("ERROR should pass at WARN level")
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warning", WARN},
		{"error", ERROR},
		{"bogus", INFO},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Info("placed %d pads", 48)

	out := buf.String()
	if !strings.Contains(out, "[INFO ]") {
		t.Errorf("expected level tag in output: %q", out)
	}
	if !strings.Contains(out, "test: placed 48 pads") {
		t.Errorf("expected prefix and formatted message in output: %q", out)
	}
}

func TestFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.WithFields(Fields{"pad": "2-7", "offset": 0.18}).Info("pass")

	out := buf.String()
	// Fields are emitted in sorted key order.
	if !strings.Contains(out, "{offset=0.18, pad=2-7}") {
		t.Errorf("expected sorted fields in output: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetFormat(FormatJSON)

	l.WithField("section", "1&3").Warn("fallback feedrate")

	var entry JSONLogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v (%q)", err, buf.String())
	}
	if entry.Level != "WARN" {
		t.Errorf("expected level WARN, got %q", entry.Level)
	}
	if entry.Message != "fallback feedrate" {
		t.Errorf("unexpected message %q", entry.Message)
	}
	if entry.Fields["section"] != "1&3" {
		t.Errorf("expected section field, got %v", entry.Fields)
	}
}

func TestWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	child := l.WithPrefix("offset")

	child.Info("buffered")

	if !strings.Contains(buf.String(), "offset: buffered") {
		t.Errorf("expected child prefix in output: %q", buf.String())
	}
}

func TestWithErrorField(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.WithError(errFake{}).Error("offset failed")

	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("expected error field in output: %q", buf.String())
	}
}

type errFake struct{}

func (errFake) Error() string { return "boom" }
