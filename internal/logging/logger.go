package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"propscout/internal/logging/types"
)

// MultiLogger fans entries out to every registered adapter. Child loggers
// created with WithField share the adapter set and level.
type MultiLogger struct {
	mu       sync.RWMutex
	adapters map[string]types.LogAdapter
	level    LogLevel
	fields   map[string]interface{}
}

// NewMultiLogger creates a logger with no adapters at info level.
func NewMultiLogger() *MultiLogger {
	return &MultiLogger{
		adapters: make(map[string]types.LogAdapter),
		level:    InfoLevel,
		fields:   make(map[string]interface{}),
	}
}

func (l *MultiLogger) Debug(message string, fields ...map[string]interface{}) {
	l.emit(DebugLevel, message, fields...)
}

func (l *MultiLogger) Info(message string, fields ...map[string]interface{}) {
	l.emit(InfoLevel, message, fields...)
}

func (l *MultiLogger) Warn(message string, fields ...map[string]interface{}) {
	l.emit(WarnLevel, message, fields...)
}

func (l *MultiLogger) Error(message string, fields ...map[string]interface{}) {
	l.emit(ErrorLevel, message, fields...)
}

// Fatal logs the message, closes all adapters and exits.
func (l *MultiLogger) Fatal(message string, fields ...map[string]interface{}) {
	l.emit(FatalLevel, message, fields...)
	l.Close()
	os.Exit(1)
}

func (l *MultiLogger) emit(level LogLevel, message string, fields ...map[string]interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	entry := &types.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Fields:    l.merged(fields),
	}
	for name, adapter := range l.adapters {
		if err := adapter.Write(entry); err != nil {
			// Adapter failures go to stderr, never back through the logger
			fmt.Fprintf(os.Stderr, "logging adapter %s: %v\n", name, err)
		}
	}
}

// WithField returns a child logger carrying an extra field on every entry.
func (l *MultiLogger) WithField(key string, value interface{}) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	child := &MultiLogger{
		adapters: l.adapters,
		level:    l.level,
		fields:   make(map[string]interface{}, len(l.fields)+1),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	child.fields[key] = value
	return child
}

// SetLevel sets the minimum level that reaches the adapters.
func (l *MultiLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// AddAdapter registers an adapter under its name.
func (l *MultiLogger) AddAdapter(adapter types.LogAdapter) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := adapter.Name()
	if _, exists := l.adapters[name]; exists {
		return fmt.Errorf("logging adapter %s already registered", name)
	}
	l.adapters[name] = adapter
	return nil
}

// Close closes every adapter.
func (l *MultiLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var failures []string
	for name, adapter := range l.adapters {
		if err := adapter.Close(); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("failed to close adapters: %s", strings.Join(failures, ", "))
	}
	return nil
}

func (l *MultiLogger) merged(extra []map[string]interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	for _, m := range extra {
		for k, v := range m {
			fields[k] = v
		}
	}
	return fields
}

// ParseLogLevel maps a config string to a level, defaulting to info.
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}
