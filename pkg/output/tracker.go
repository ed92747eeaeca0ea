package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/niels/git-sniffer/pkg/git"
	"github.com/niels/git-sniffer/pkg/sniffer"
)

// ConsoleTracker reports the progress of a run as it happens.
// It implements sniffer.Observer.
type ConsoleTracker struct {
	mu        sync.Mutex
	writer    io.Writer
	formatter *TerminalFormatter
	started   map[sniffer.Tool]time.Time
}

// NewConsoleTracker creates a new console progress tracker writing to stderr
func NewConsoleTracker(useColor bool) *ConsoleTracker {
	return &ConsoleTracker{
		writer:    os.Stderr,
		formatter: NewTerminalFormatter(useColor),
		started:   make(map[sniffer.Tool]time.Time),
	}
}

// WithWriter sets the writer for the console tracker
func (t *ConsoleTracker) WithWriter(writer io.Writer) *ConsoleTracker {
	t.writer = writer
	return t
}

// StagedFiles lists the files staged for commit
func (t *ConsoleTracker) StagedFiles(baseline string, files []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.writer, "Checking %d staged files against %s\n", len(files), shortBaseline(baseline))
	for _, f := range files {
		fmt.Fprintf(t.writer, "  %s\n", t.formatter.colorize(f, color.FgCyan))
	}
}

// ToolStarted announces a tool invocation
func (t *ConsoleTracker) ToolStarted(tool sniffer.Tool, files []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started[tool] = time.Now()
	fmt.Fprintf(t.writer, "Running %s on %d files...\n", tool, len(files))
}

// ToolFinished reports whether a tool came back clean
func (t *ConsoleTracker) ToolFinished(tool sniffer.Tool, output string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.started[tool]).Round(time.Millisecond)
	if strings.TrimSpace(output) == "" {
		fmt.Fprintf(t.writer, "%s %s (%s)\n", tool, t.formatter.colorize("passed", color.FgGreen), elapsed)
		return
	}
	fmt.Fprintf(t.writer, "%s %s (%s)\n", tool, t.formatter.colorize("reported violations", color.FgRed), elapsed)
}

func shortBaseline(baseline string) string {
	if baseline == git.EmptyTreeHash {
		return "the empty tree"
	}
	return baseline
}
