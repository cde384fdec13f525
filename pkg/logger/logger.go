// Package logger provides namespaced debug loggers in the style of the
// "debug" npm package. Loggers are silent unless the DEBUG environment
// variable enables their namespace.
//
// DEBUG accepts a comma separated list of patterns. A pattern may end with
// "*" to match a namespace prefix, and a leading "-" excludes matching
// namespaces:
//
//	DEBUG=*                     enable everything
//	DEBUG=build:*               enable the build namespace
//	DEBUG=*,-cli:watch          everything except the watcher
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger writes debug output for a single namespace.
type Logger struct {
	namespace string
	enabled   bool

	mu   sync.Mutex
	last time.Time
}

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stderr
)

// New creates a logger for namespace. Whether it is enabled is decided once,
// from the DEBUG environment variable at creation time.
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   isEnabled(namespace, os.Getenv("DEBUG")),
	}
}

// SetOutput redirects the output of all loggers. It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outputMu.Lock()
	defer outputMu.Unlock()
	prev := output
	output = w
	return prev
}

// Enabled reports whether the logger writes anything.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Namespace returns the logger namespace.
func (l *Logger) Namespace() string {
	return l.namespace
}

// Printf formats like fmt.Printf.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Print concatenates its arguments like fmt.Sprint.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprint(args...))
}

func (l *Logger) write(msg string) {
	l.mu.Lock()
	now := time.Now()
	var diff time.Duration
	if !l.last.IsZero() {
		diff = now.Sub(l.last)
	}
	l.last = now
	l.mu.Unlock()

	outputMu.Lock()
	defer outputMu.Unlock()
	fmt.Fprintf(output, "%s %s +%s\n", l.namespace, msg, formatDiff(diff))
}

func formatDiff(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.Round(time.Millisecond).String()
	}
}

// isEnabled evaluates the DEBUG patterns for namespace. Exclusions win over
// inclusions regardless of their position in the list.
func isEnabled(namespace, debug string) bool {
	if debug == "" {
		return false
	}

	enabled := false
	for _, pattern := range strings.Split(debug, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.HasPrefix(pattern, "-") {
			if matchPattern(namespace, pattern[1:]) {
				return false
			}
			continue
		}
		if matchPattern(namespace, pattern) {
			enabled = true
		}
	}
	return enabled
}

func matchPattern(namespace, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(namespace, prefix)
	}
	return namespace == pattern
}
