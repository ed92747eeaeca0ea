package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/niels/git-sniffer/pkg/sniffer"
)

// Default width for all terminal output elements
const DefaultWidth = 90

// TerminalFormatter formats run reports for terminal output
type TerminalFormatter struct {
	useColor bool
	width    int // Consistent width for all elements
}

// NewTerminalFormatter creates a new terminal formatter
func NewTerminalFormatter(useColor bool) *TerminalFormatter {
	return &TerminalFormatter{
		useColor: useColor,
		width:    DefaultWidth,
	}
}

// WithWidth sets the width of separator lines
func (f *TerminalFormatter) WithWidth(width int) *TerminalFormatter {
	if width > 0 {
		f.width = width
	}
	return f
}

// FormatViolations renders the output of every tool that reported something,
// each under a header naming the tool. Tool output is kept verbatim.
func (f *TerminalFormatter) FormatViolations(report *sniffer.Report) string {
	if report == nil || !report.Failed() {
		return ""
	}

	var sb strings.Builder
	f.writeSection(&sb, sniffer.ToolStyle, report.StyleOutput)
	f.writeSection(&sb, sniffer.ToolLint, report.LintOutput)
	return sb.String()
}

func (f *TerminalFormatter) writeSection(sb *strings.Builder, tool sniffer.Tool, output string) {
	if strings.TrimSpace(output) == "" {
		return
	}

	sb.WriteString(f.colorize(fmt.Sprintf("%s found coding standard violations", tool), color.FgRed, color.Bold))
	sb.WriteString("\n")
	sb.WriteString(f.colorize(strings.Repeat("-", f.width), color.FgRed))
	sb.WriteString("\n")
	sb.WriteString(output)
	if !strings.HasSuffix(output, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// FormatSummary describes the outcome of a run in one line
func (f *TerminalFormatter) FormatSummary(report *sniffer.Report) string {
	if report == nil {
		return ""
	}

	switch report.Skipped {
	case sniffer.SkipEnvironment:
		return f.colorize("Skipped: not the target environment", color.FgYellow)
	case sniffer.SkipNoStagedFiles:
		return f.colorize("Nothing staged to check", color.FgYellow)
	case sniffer.SkipNoMatchingFiles:
		return f.colorize(fmt.Sprintf("None of the %d staged files match the configured extensions", len(report.Staged)), color.FgYellow)
	}

	if report.Failed() {
		return f.colorize("Commit rejected: fix the violations above and stage the changes", color.FgRed, color.Bold)
	}

	checked := len(union(report.StyleFiles, report.LintFiles))
	return f.colorize(fmt.Sprintf("No coding standard violations found in %d staged files", checked), color.FgGreen, color.Bold)
}

// colorize wraps text in the given attributes when color is enabled
func (f *TerminalFormatter) colorize(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if f.useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
