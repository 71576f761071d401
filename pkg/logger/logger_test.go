package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestWriterLoggerFormatsObject(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, WithClock(fixedClock))

	l.Info("tools loaded", map[string]any{"count": 2})

	want := "2025-03-01T12:00:00Z INFO  tools loaded obj={\"count\":2}\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriterLoggerWithoutObject(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, WithClock(fixedClock))

	l.Error("connect failed", nil)

	if buf.String() != "2025-03-01T12:00:00Z ERROR connect failed\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestWriterLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, WithLevel(LevelWarn))

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	l.Warn("shown", nil)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected messages below warn to be dropped: %q", out)
	}
	if !strings.Contains(out, "WARN  shown") {
		t.Fatalf("expected warn message, got %q", out)
	}
}

func TestWriterLoggerIndent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, WithIndent())

	l.Debug("append item", map[string]any{"type": "function_call_output"})

	if !strings.Contains(buf.String(), "{\n  \"type\": \"function_call_output\"\n}") {
		t.Fatalf("expected indented object, got %q", buf.String())
	}
}

func TestDebugHelperRespectsEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	Debug(false, l, "skipped", nil)
	Debugf(true, l, "round %d/%d", 1, 3)
	Debug(true, nil, "nil logger is ignored", nil)

	out := buf.String()
	if strings.Contains(out, "skipped") {
		t.Fatalf("expected disabled debug to be dropped: %q", out)
	}
	if !strings.Contains(out, "round 1/3") {
		t.Fatalf("expected formatted debug line, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"chatty":  LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
