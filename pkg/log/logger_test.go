package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newCaptureLogger(level Level, formatter Formatter) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(&WriterOutput{W: &buf}),
	)
	return l, &buf
}

func TestLevelGate(t *testing.T) {
	l, buf := newCaptureLogger(WarnLevel, &TextFormatter{})
	l.Info("dropped")
	l.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info should be gated below warn: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn should pass: %q", out)
	}
}

func TestJSONFormatterFields(t *testing.T) {
	l, buf := newCaptureLogger(DebugLevel, &JSONFormatter{})
	l.With(Component("store")).Info("opened", Str("store_id", "drag"), Int("records", 3))

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["msg"] != "opened" || m["level"] != "INFO" {
		t.Fatalf("unexpected entry: %v", m)
	}
	if m["component"] != "store" || m["store_id"] != "drag" {
		t.Fatalf("missing fields: %v", m)
	}
}

func TestWithErrorField(t *testing.T) {
	l, buf := newCaptureLogger(DebugLevel, &TextFormatter{})
	l.WithError(errors.New("boom")).Error("put failed")
	if !strings.Contains(buf.String(), `error="boom"`) {
		t.Fatalf("expected error field: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"info":  InfoLevel,
		"WARN":  WarnLevel,
		"error": ErrorLevel,
		"":      InfoLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
