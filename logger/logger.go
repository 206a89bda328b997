package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Format represents the log format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Rotation bounds for file outputs opened by Init and Rotate.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation is applied when Init is called without explicit bounds.
var DefaultRotation = Rotation{MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 28}

// Logger represents a logger instance
type Logger struct {
	*slog.Logger
	mu       sync.Mutex
	writers  []io.Writer
	level    *slog.LevelVar
	format   Format
	rotation Rotation
}

// New creates a new logger
func New(level slog.Level, format Format, writers ...io.Writer) *Logger {
	l := &Logger{
		writers:  writers,
		level:    new(slog.LevelVar),
		format:   format,
		rotation: DefaultRotation,
	}
	l.level.Set(level)
	l.rebuild()
	return l
}

// rebuild swaps the handler after a writer or format change. Callers hold mu
// unless the logger is not yet shared.
func (l *Logger) rebuild() {
	out := io.MultiWriter(l.writers...)
	opts := &slog.HandlerOptions{Level: l.level}
	var handler slog.Handler
	switch l.format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	l.Logger = slog.New(handler)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// AddOutput adds a new output destination
func (l *Logger) AddOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writers = append(l.writers, w)
	l.rebuild()
}

// SetFormat changes the log format
func (l *Logger) SetFormat(format Format) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
	l.rebuild()
}

// Rotate closes current file outputs and starts writing to path.
func (l *Logger) Rotate(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var kept []io.Writer
	for _, writer := range l.writers {
		if closer, ok := fileOutput(writer); ok {
			_ = closer.Close()
			continue
		}
		kept = append(kept, writer)
	}

	out, err := openFile(path, l.rotation)
	if err != nil {
		return err
	}
	l.writers = append(kept, out)
	l.rebuild()
	return nil
}

// Close closes all file writers
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, writer := range l.writers {
		if closer, ok := fileOutput(writer); ok {
			if err := closer.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Level returns the current log level
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

func fileOutput(w io.Writer) (io.Closer, bool) {
	switch v := w.(type) {
	case *lumberjack.Logger:
		return v, true
	case *os.File:
		if v == os.Stdout || v == os.Stderr {
			return nil, false
		}
		return v, true
	default:
		return nil, false
	}
}

func openFile(path string, rotation Rotation) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}, nil
}

// Init initializes the default logger. Console output goes to stderr so the
// stdio transport owns stdout.
func Init(level slog.Level, format Format, paths ...string) error {
	return InitWithRotation(level, format, DefaultRotation, paths...)
}

// InitWithRotation is Init with explicit file rotation bounds.
func InitWithRotation(level slog.Level, format Format, rotation Rotation, paths ...string) error {
	writers := []io.Writer{os.Stderr}
	for _, path := range paths {
		if path == "" {
			continue
		}
		out, err := openFile(path, rotation)
		if err != nil {
			return err
		}
		writers = append(writers, out)
	}

	l := New(level, format, writers...)
	l.rotation = rotation
	defaultLogger = l
	return nil
}

// GetLevelFromString returns the log level from a string
func GetLevelFromString(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// defaultLogger is the default logger instance
var defaultLogger = New(slog.LevelInfo, FormatText, os.Stderr)

// Default returns the process-wide logger.
func Default() *Logger {
	return defaultLogger
}

// SetLevel changes the level of the default logger.
func SetLevel(level slog.Level) {
	defaultLogger.SetLevel(level)
}

// Slog exposes the default logger for libraries that take *slog.Logger.
func Slog() *slog.Logger {
	return defaultLogger.Logger
}

// Helper functions for common logging patterns
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	defaultLogger.DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	defaultLogger.InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	defaultLogger.WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	defaultLogger.ErrorContext(ctx, msg, args...)
}
