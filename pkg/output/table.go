package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/niels/git-sniffer/pkg/sniffer"
)

// WriteFileTable writes one row per staged file showing which tools checked it
func WriteFileTable(w io.Writer, report *sniffer.Report) error {
	if report == nil || len(report.Staged) == 0 {
		return nil
	}

	style := toSet(report.StyleFiles)
	lint := toSet(report.LintFiles)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"File", "PHP CodeSniffer", "ESLint"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, p := range report.Staged {
		data = append(data, []string{p, mark(style[p]), mark(lint[p])})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func mark(checked bool) string {
	if checked {
		return "checked"
	}
	return "-"
}

func toSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}
