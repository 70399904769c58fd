package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithSink("warn", "json", zapcore.AddSync(&buf))
	if err != nil {
		t.Fatalf("NewWithSink: %v", err)
	}
	log.Info("dropped")
	log.Warn("device analysis failed", zap.String("file", "sw1.txt"))
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["msg"] != "device analysis failed" || entry["file"] != "sw1.txt" {
		t.Errorf("entry: got %v", entry)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithSink("DEBUG", "console", zapcore.AddSync(&buf))
	if err != nil {
		t.Fatalf("NewWithSink: %v", err)
	}
	log.Debug("module evaluated", zap.String("module", "SSH"))
	if !strings.Contains(buf.String(), "module evaluated") || !strings.Contains(buf.String(), "DEBUG") {
		t.Errorf("got %q", buf.String())
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
