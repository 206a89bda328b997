package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output %q: %v", buf.String(), err)
	}
	buf.Reset()
	return entry
}

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(slog.LevelDebug, FormatJSON, buf)

	cases := []struct {
		log   func(string, ...any)
		level string
	}{
		{logger.Debug, "DEBUG"},
		{logger.Info, "INFO"},
		{logger.Warn, "WARN"},
		{logger.Error, "ERROR"},
	}
	for _, tc := range cases {
		tc.log("tool call", "tool", "get_contact")
		entry := decodeLine(t, buf)
		if entry["level"] != tc.level || entry["msg"] != "tool call" || entry["tool"] != "get_contact" {
			t.Errorf("unexpected %s entry: %v", tc.level, entry)
		}
	}

	logger.SetLevel(slog.LevelWarn)
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(lines))
	}
	if logger.Level() != slog.LevelWarn {
		t.Errorf("Expected level WARN, got %v", logger.Level())
	}
}

func TestSetLevelKeepsDerivedLoggers(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(slog.LevelInfo, FormatJSON, buf)
	derived := logger.With("component", "dispatcher")

	derived.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level, got %q", buf.String())
	}

	logger.SetLevel(slog.LevelDebug)
	derived.Debug("visible")
	entry := decodeLine(t, buf)
	if entry["msg"] != "visible" || entry["component"] != "dispatcher" {
		t.Errorf("unexpected entry after level change: %v", entry)
	}
}

func TestTextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(slog.LevelInfo, FormatText, buf)

	logger.Info("test message", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "test message") || !strings.Contains(output, "key=value") {
		t.Error("Text format not logged correctly")
	}

	buf.Reset()
	logger.SetFormat(FormatJSON)
	logger.Info("now json", "key", "value")
	if entry := decodeLine(t, buf); entry["msg"] != "now json" {
		t.Errorf("unexpected entry after format switch: %v", entry)
	}
}

func TestMultipleOutputs(t *testing.T) {
	buf1 := &bytes.Buffer{}
	buf2 := &bytes.Buffer{}
	logger := New(slog.LevelInfo, FormatJSON, buf1)
	logger.AddOutput(buf2)

	logger.Info("test message", "key", "value")

	if buf1.String() != buf2.String() {
		t.Error("Multiple outputs should have the same content")
	}
	entry := decodeLine(t, buf1)
	if entry["msg"] != "test message" || entry["key"] != "value" {
		t.Error("Message not logged correctly to multiple outputs")
	}
}

func TestLogRotation(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "test.log")

	if err := InitWithRotation(slog.LevelInfo, FormatJSON, Rotation{MaxSizeMB: 1, MaxBackups: 1}, logPath); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	defer Default().Close()

	Info("test message 1", "key", "value1")

	newLogPath := filepath.Join(tempDir, "test2.log")
	if err := Default().Rotate(newLogPath); err != nil {
		t.Fatalf("Failed to rotate log file: %v", err)
	}
	Info("test message 2", "key", "value2")

	oldContent, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read old log file: %v", err)
	}
	if !strings.Contains(string(oldContent), "test message 1") {
		t.Error("Old log file should contain first message")
	}
	if strings.Contains(string(oldContent), "test message 2") {
		t.Error("Old log file should not receive messages after rotation")
	}

	newContent, err := os.ReadFile(newLogPath)
	if err != nil {
		t.Fatalf("Failed to read new log file: %v", err)
	}
	if !strings.Contains(string(newContent), "test message 2") {
		t.Error("New log file should contain second message")
	}
}

func TestLogLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"invalid", slog.LevelInfo},
	}

	for _, test := range tests {
		level := GetLevelFromString(test.input)
		if level != test.expected {
			t.Errorf("Expected level %v for input %q, got %v", test.expected, test.input, level)
		}
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestConcurrentLogging(t *testing.T) {
	out := &lockedBuffer{}
	logger := New(slog.LevelDebug, FormatJSON, out)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range 100 {
				logger.Info("message", "id", id, "count", j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(out.buf.String()), "\n")
	if len(lines) != 1000 {
		t.Errorf("Expected 1000 messages, got %d", len(lines))
	}
}
