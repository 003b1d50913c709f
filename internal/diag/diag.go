// Package diag is the small diagnostics sink passes write to when they
// degrade gracefully instead of failing outright — a malformed exit
// predecessor the inliner skips, say. It collects lines rather than
// printing immediately, the way a builder accumulates text before a
// single final render.
package diag

import (
	"fmt"
	"strings"
)

// Logger accumulates diagnostic lines. The zero value is an empty logger
// ready for use; New returns a pointer to one. A nil *Logger is safe to call Printf on (it discards the line),
// so passes can accept an optional logger without a nil check at every
// call site.
type Logger struct {
	b strings.Builder
}

// New returns an empty Logger.
func New() *Logger { return &Logger{} }

// Printf appends a formatted line. Safe to call on a nil receiver.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	fmt.Fprintf(&l.b, format, args...)
	l.b.WriteByte('\n')
}

// String returns every accumulated line, newline-terminated.
func (l *Logger) String() string {
	if l == nil {
		return ""
	}
	return l.b.String()
}

// Lines splits the accumulated text into individual lines, dropping the
// trailing empty element left by the final newline.
func (l *Logger) Lines() []string {
	s := l.String()
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
