// Package logx provides leveled, component-tagged logging for the
// workflow runtime.
package logx

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity label.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger writes level-prefixed lines tagged with a component id.
type Logger struct {
	id     string
	logger *log.Logger
}

var (
	debugEnabled bool
	debugOnce    sync.Once
)

// debugFromEnv reads DEBUG=1/true once per process.
func debugFromEnv() bool {
	debugOnce.Do(func() {
		v := os.Getenv("DEBUG")
		debugEnabled = v == "1" || strings.EqualFold(v, "true")
	})
	return debugEnabled
}

// NewLogger creates a logger for the named component. Output goes to
// stderr so stdout stays free for the embedding application.
func NewLogger(id string) *Logger {
	return &Logger{
		id:     id,
		logger: log.New(os.Stderr, "", 0),
	}
}

func (l *Logger) logf(level Level, format string, args ...any) {
	ts := time.Now().Format("15:04:05.000")
	l.logger.Printf("%s [%s] %s: %s", ts, level, l.id, fmt.Sprintf(format, args...))
}

// Debug logs at debug level when DEBUG is enabled in the environment.
func (l *Logger) Debug(format string, args ...any) {
	if debugFromEnv() {
		l.logf(LevelDebug, format, args...)
	}
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.logf(LevelWarn, format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...any) {
	l.logf(LevelError, format, args...)
}
