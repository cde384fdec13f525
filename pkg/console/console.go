// Package console formats user-facing terminal output. Styling is applied only
// when stderr is a terminal so that piped output and tests see plain text.
package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/usefultrainer/freeze/pkg/styles"
	"github.com/usefultrainer/freeze/pkg/tty"
)

func applyStyle(style lipgloss.Style, text string) string {
	if tty.IsStderrTerminal() {
		return style.Render(text)
	}
	return text
}

// applyStyleFor styles text only when w is a terminal. Use it for messages
// written somewhere other than stderr.
func applyStyleFor(w io.Writer, style lipgloss.Style, text string) string {
	if f, ok := w.(*os.File); ok && tty.IsTerminal(f) {
		return style.Render(text)
	}
	return text
}

// FormatSuccessMessage formats a success message with a checkmark.
func FormatSuccessMessage(message string) string {
	return applyStyle(styles.Success, "✓ ") + message
}

// FormatSuccessMessageFor is FormatSuccessMessage for a message written to w.
func FormatSuccessMessageFor(w io.Writer, message string) string {
	return applyStyleFor(w, styles.Success, "✓ ") + message
}

// FormatInfoMessage formats an informational message.
func FormatInfoMessage(message string) string {
	return applyStyle(styles.Info, "ℹ ") + message
}

// FormatWarningMessage formats a warning message.
func FormatWarningMessage(message string) string {
	return applyStyle(styles.Warning, "⚠ ") + message
}

// FormatErrorMessage formats an error message with a cross mark.
func FormatErrorMessage(message string) string {
	return applyStyle(styles.Error, "✗ ") + message
}

// FormatCommandMessage formats a shell command the user may run.
func FormatCommandMessage(command string) string {
	return applyStyle(styles.Command, "⚡ ") + command
}

// FormatProgressMessage formats an in-progress status line.
func FormatProgressMessage(message string) string {
	return applyStyle(styles.Progress, "🔨 ") + message
}

// FormatLocationMessage formats a message pointing at a file or directory.
func FormatLocationMessage(message string) string {
	return applyStyle(styles.Info, "📁 ") + message
}

// FormatErrorWithSuggestions formats an error followed by a bulleted list of
// suggestions. The suggestions section is omitted when there are none.
func FormatErrorWithSuggestions(message string, suggestions []string) string {
	var b strings.Builder
	b.WriteString(FormatErrorMessage(message))
	if len(suggestions) == 0 {
		return b.String()
	}
	b.WriteString("\n\nSuggestions:\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "  • %s\n", s)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ToRelativePath converts an absolute path to one relative to the working
// directory when that is shorter to read. Relative paths are returned as is.
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// IsAccessibleMode reports whether interactive components should fall back to
// accessible (screen reader friendly) rendering.
func IsAccessibleMode() bool {
	return os.Getenv("ACCESSIBLE") != "" ||
		os.Getenv("TERM") == "dumb" ||
		os.Getenv("NO_COLOR") != ""
}
