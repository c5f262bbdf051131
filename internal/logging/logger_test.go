package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar, false))

	logger.Info("render started", String("input", "song.wav"), Int("frames", 285))

	line := buf.String()
	for _, want := range []string{"INFO", "render started", "input=song.wav", "frames=285"} {
		if !strings.Contains(line, want) {
			t.Errorf("console line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Errorf("color disabled but escape codes present: %q", line)
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar), false))
	logger.Warn("degraded frame", String("reason", "bad commentary text"))
	if !strings.Contains(buf.String(), `reason="bad commentary text"`) {
		t.Errorf("expected quoted value, got %q", buf.String())
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar), false)).WithGroup("encode")
	logger.Info("progress", Int("frame", 12))
	if !strings.Contains(buf.String(), "encode.frame=12") {
		t.Errorf("expected grouped key, got %q", buf.String())
	}
}

func TestJSONHandlerShape(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, new(slog.LevelVar), false))
	logger.Error("encode failed", String("output", "out.mp4"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode JSON log line: %v", err)
	}
	if payload["level"] != "error" {
		t.Errorf("level = %v, want error", payload["level"])
	}
	if payload["msg"] != "encode failed" {
		t.Errorf("msg = %v", payload["msg"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Error("missing ts field")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should vanish")
	if logger.Enabled(nil, slog.LevelError) {
		t.Error("nop logger should not enable any level")
	}
}
