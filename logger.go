package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a -log-level flag value to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"` // Optional additional details
}

// Logger keeps a bounded in-memory history and mirrors entries to stderr.
// Stdout is the protocol channel, so console output must never go there.
type Logger struct {
	mu         sync.RWMutex
	entries    []LogEntry
	maxEntries int
	minLevel   LogLevel
}

// Global logger instance
var logger = &Logger{
	entries:    make([]LogEntry, 0),
	maxEntries: 1000,
	minLevel:   LogLevelInfo,
}

// SetMinLevel sets the minimum severity that is recorded and printed.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Log adds a new log entry
func (l *Logger) Log(level LogLevel, source, message string, details ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Source:    source,
		Message:   message,
	}

	if len(details) > 0 {
		entry.Details = details[0]
	}

	l.entries = append(l.entries, entry)

	// Trim if exceeds max entries
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}

	// Format: [HH:MM:SS] LEVEL [Source] Message
	output := fmt.Sprintf("[%s] %s [%s] %s",
		entry.Timestamp.Format("15:04:05"), entry.Level.String(), source, message)
	if entry.Details != "" {
		output += fmt.Sprintf(" - %s", entry.Details)
	}
	fmt.Fprintln(os.Stderr, output)
}

// Debug logs a debug level message
func (l *Logger) Debug(source, message string, details ...string) {
	l.Log(LogLevelDebug, source, message, details...)
}

// Info logs an info level message
func (l *Logger) Info(source, message string, details ...string) {
	l.Log(LogLevelInfo, source, message, details...)
}

// Warn logs a warning level message
func (l *Logger) Warn(source, message string, details ...string) {
	l.Log(LogLevelWarn, source, message, details...)
}

// Error logs an error level message
func (l *Logger) Error(source, message string, details ...string) {
	l.Log(LogLevelError, source, message, details...)
}

// GetEntries returns a copy of all log entries
func (l *Logger) GetEntries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]LogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// GetRecentEntries returns the most recent n entries
func (l *Logger) GetRecentEntries(n int) []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}

	start := len(l.entries) - n
	entries := make([]LogEntry, n)
	copy(entries, l.entries[start:])
	return entries
}

// Clear removes all log entries
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make([]LogEntry, 0)
}

// Helper functions for global logger

// LogDebug logs a debug message to the global logger
func LogDebug(source, message string, details ...string) {
	logger.Debug(source, message, details...)
}

// LogInfo logs an info message to the global logger
func LogInfo(source, message string, details ...string) {
	logger.Info(source, message, details...)
}

// LogWarn logs a warning message to the global logger
func LogWarn(source, message string, details ...string) {
	logger.Warn(source, message, details...)
}

// LogError logs an error message to the global logger
func LogError(source, message string, details ...string) {
	logger.Error(source, message, details...)
}

// SetLogLevel sets the minimum severity for the global logger
func SetLogLevel(level LogLevel) {
	logger.SetMinLevel(level)
}
