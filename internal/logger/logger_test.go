// ABOUTME: Tests for level-prefixed logging with verbosity control
// ABOUTME: Covers level prefixes, verbose gating and component tags

package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetVerbose(t *testing.T) {
	// Default should be non-verbose
	if IsVerbose() {
		t.Error("Logger should default to non-verbose")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("SetVerbose(true) did not enable verbose mode")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("SetVerbose(false) did not disable verbose mode")
	}
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	defer SetVerbose(false)

	SetVerbose(false)
	Debug("test debug message")
	if buf.Len() > 0 {
		t.Error("Debug output when not verbose")
	}

	SetVerbose(true)
	buf.Reset()
	Debug("test debug message")
	if !strings.Contains(buf.String(), "[DEBUG]") {
		t.Error("Debug did not output [DEBUG] prefix")
	}
	if !strings.Contains(buf.String(), "test debug message") {
		t.Error("Debug did not output message")
	}
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	tests := []struct {
		prefix string
		log    func(string, ...interface{})
	}{
		{"[INFO]", Info},
		{"[WARN]", Warn},
		{"[ERROR]", Error},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.log("level message %d", 7)
		out := buf.String()
		if !strings.Contains(out, tt.prefix) {
			t.Errorf("expected %s prefix, got %q", tt.prefix, out)
		}
		if !strings.Contains(out, "level message 7") {
			t.Errorf("expected formatted message, got %q", out)
		}
	}
}

func TestTaggedLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	log := Tagged("dispatch")
	log.Warn("route %s missing", "foo")

	out := buf.String()
	if !strings.Contains(out, "[WARN] [dispatch] route foo missing") {
		t.Errorf("unexpected tagged output: %q", out)
	}

	buf.Reset()
	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("tagged Debug wrote while not verbose: %q", buf.String())
	}
}
