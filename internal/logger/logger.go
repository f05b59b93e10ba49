// ABOUTME: Level-prefixed logging with verbosity control for the dispatcher
// ABOUTME: Package-level helpers plus component-tagged loggers ([dispatch], [mgmt], ...)

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

var (
	verbose atomic.Bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose (DEBUG) logging
func SetVerbose(v bool) {
	verbose.Store(v)
}

// IsVerbose returns current verbose setting
func IsVerbose() bool {
	return verbose.Load()
}

// SetOutput sets the output destination for logs. nil restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	output = w
	log.SetOutput(w)
}

// Output returns the current log destination.
func Output() io.Writer {
	return output
}

func emit(level, tag, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if tag != "" {
		log.Printf("[%s] [%s] %s", level, tag, msg)
		return
	}
	log.Printf("[%s] %s", level, msg)
}

// Debug logs at DEBUG level (only shown when verbose)
func Debug(format string, args ...interface{}) {
	if IsVerbose() {
		emit("DEBUG", "", format, args...)
	}
}

// Info logs at INFO level (always shown)
func Info(format string, args ...interface{}) {
	emit("INFO", "", format, args...)
}

// Warn logs at WARN level (always shown)
func Warn(format string, args ...interface{}) {
	emit("WARN", "", format, args...)
}

// Error logs at ERROR level (always shown)
func Error(format string, args ...interface{}) {
	emit("ERROR", "", format, args...)
}

// Logger prefixes every line with a component tag.
type Logger struct {
	tag string
}

// Tagged returns a logger that writes "[LEVEL] [tag] message".
func Tagged(tag string) Logger {
	return Logger{tag: tag}
}

func (l Logger) Debug(format string, args ...interface{}) {
	if IsVerbose() {
		emit("DEBUG", l.tag, format, args...)
	}
}

func (l Logger) Info(format string, args ...interface{}) {
	emit("INFO", l.tag, format, args...)
}

func (l Logger) Warn(format string, args ...interface{}) {
	emit("WARN", l.tag, format, args...)
}

func (l Logger) Error(format string, args ...interface{}) {
	emit("ERROR", l.tag, format, args...)
}
