// Package logging provides the small leveled, key-value logger used
// across the server. It wraps the standard library's log.Logger the
// same way the teacher repository logs operational events with
// log.Printf, just with a consistent "message key=value..." shape so
// log lines stay greppable without pulling in a third-party logging
// framework the rest of the stack doesn't need.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger writes leveled, structured lines to an underlying
// *log.Logger.
type Logger struct {
	base *log.Logger
}

// New returns a Logger writing to stderr with a standard timestamp.
func New() *Logger {
	return &Logger{base: log.New(os.Stderr, "", log.LstdFlags)}
}

func (l *Logger) log(level, message string, kv ...any) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(message)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	l.base.Println(b.String())
}

// Info logs an informational event with key-value pairs, e.g.
// Info("starting server", "port", 3001).
func (l *Logger) Info(message string, kv ...any) {
	l.log("INFO", message, kv...)
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(message string, kv ...any) {
	l.log("WARN", message, kv...)
}

// Error logs a failed operation.
func (l *Logger) Error(message string, kv ...any) {
	l.log("ERROR", message, kv...)
}
