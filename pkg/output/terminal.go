package output

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter is satisfied by *os.File
type fdWriter interface {
	Fd() uintptr
}

// SupportsColor reports whether colored output makes sense on w: it must be a
// terminal and color must not be disabled through NO_COLOR or TERM=dumb
func SupportsColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of the terminal behind w, or DefaultWidth
// when w is not a terminal
func TerminalWidth(w io.Writer) int {
	f, ok := w.(fdWriter)
	if !ok {
		return DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	if width > DefaultWidth {
		return DefaultWidth
	}
	return width
}
