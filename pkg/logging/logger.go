// Package logging writes structured diagnostic events to JSONL files under
// the platewise config directory. Console output is rendered by the CLI
// layer; this logger exists for post-mortem debugging only. Callers must
// never pass unmasked card data in event details.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Category represents the subsystem generating the log
type Category string

const (
	CategoryBrowser  Category = "browser"
	CategoryCaptcha  Category = "captcha"
	CategoryProvider Category = "provider"
	CategoryConfig   Category = "config"
	CategoryPayment  Category = "payment"
	CategoryCLI      Category = "cli"
)

// Event represents a structured log event
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Category  Category       `json:"category"`
	EventType string         `json:"type"`
	RunID     string         `json:"run_id,omitempty"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Logger writes structured events to a per-run debug log plus a shared
// error log.
type Logger struct {
	runID     string
	baseDir   string
	debugFile *os.File
	errorFile *os.File
	mu        sync.Mutex
	minLevel  Level
}

// NewLogger creates a new structured logger rooted at baseDir. runID names
// the per-run debug file.
func NewLogger(baseDir, runID string) (*Logger, error) {
	runsDir := filepath.Join(baseDir, "runs")
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	debugFile, err := os.OpenFile(
		filepath.Join(runsDir, runID+".jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}

	errorFile, err := os.OpenFile(
		filepath.Join(baseDir, "errors.jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		debugFile.Close()
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	return &Logger{
		runID:     runID,
		baseDir:   baseDir,
		debugFile: debugFile,
		errorFile: errorFile,
		minLevel:  LevelDebug,
	}, nil
}

// Nop returns a logger that discards everything. Used where a command runs
// in an environment without a writable config directory.
func Nop() *Logger {
	return &Logger{minLevel: LevelError, runID: "nop"}
}

// SetMinLevel sets the minimum log level
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Log writes an event to the appropriate destinations
func (l *Logger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if !l.shouldLog(event.Level) {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	if l.debugFile != nil {
		if _, err := l.debugFile.Write(data); err != nil {
			return fmt.Errorf("failed to write to debug log: %w", err)
		}
	}

	if event.Level == LevelError && l.errorFile != nil {
		if _, err := l.errorFile.Write(data); err != nil {
			return fmt.Errorf("failed to write to error log: %w", err)
		}
	}

	return nil
}

// shouldLog checks if event should be logged based on level
func (l *Logger) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}
	return levels[level] >= levels[l.minLevel]
}

// Debug logs a debug event
func (l *Logger) Debug(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelDebug,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Info logs an info event
func (l *Logger) Info(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelInfo,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Warn logs a warning event
func (l *Logger) Warn(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelWarn,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Error logs an error event
func (l *Logger) Error(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelError,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Close closes all log files
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	if l.debugFile != nil {
		if err := l.debugFile.Close(); err != nil {
			errs = append(errs, err)
		}
		l.debugFile = nil
	}
	if l.errorFile != nil {
		if err := l.errorFile.Close(); err != nil {
			errs = append(errs, err)
		}
		l.errorFile = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close log files: %v", errs)
	}
	return nil
}
