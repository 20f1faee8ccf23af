// Package ui prints user-facing messages to stderr, coloured when stderr is a
// terminal and NO_COLOR is unset.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

var writer io.Writer = os.Stderr

// SetWriter overrides the output writer (for testing). Nil restores stderr.
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	writer = w
}

var color = detectColor(os.Stderr)

func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorEnabled overrides color detection (for testing).
func SetColorEnabled(enabled bool) {
	color = enabled
}

func paint(code, s string) string {
	if !color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Warnf prints a formatted user-facing warning.
func Warnf(format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", paint("33", "Warning:"), fmt.Sprintf(format, args...))
}

// Errorf prints a formatted user-facing error.
func Errorf(format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", paint("31", "Error:"), fmt.Sprintf(format, args...))
}
