package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/niels/git-sniffer/pkg/logging"
	"github.com/niels/git-sniffer/pkg/output"
	"github.com/niels/git-sniffer/pkg/sniffer"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the staged files with the configured tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}
}

func runCheck(cmd *cobra.Command, opts *options) error {
	reader, err := opts.reader()
	if err != nil {
		return err
	}

	sniffOpts := sniffer.Options{
		Environment: opts.environment,
		Dir:         opts.dir,
		Reader:      reader,
		Runner:      opts.deps.Runner,
		Fs:          opts.deps.Fs,
	}
	errOut := cmd.ErrOrStderr()
	useColor := opts.useColor(errOut)
	if opts.verbose {
		sniffOpts.Observer = output.NewConsoleTracker(useColor).WithWriter(errOut)
	}

	s, err := sniffer.New(opts.cfg, sniffOpts)
	if err != nil {
		return fmt.Errorf("failed to create sniffer: %w", err)
	}

	report, err := s.Run(cmd.Context())

	formatter := output.NewTerminalFormatter(useColor).WithWidth(output.TerminalWidth(errOut))
	if report != nil && report.Failed() {
		fmt.Fprint(errOut, formatter.FormatViolations(report))
	}
	if opts.verbose && report != nil && (err == nil || report.Failed()) {
		if tableErr := output.WriteFileTable(errOut, report); tableErr != nil {
			logging.WarnWith("Failed to render file table", map[string]interface{}{
				"error": tableErr,
			})
		}
		fmt.Fprintln(errOut, formatter.FormatSummary(report))
	}

	if err != nil {
		logging.ErrorWith("Check failed", map[string]interface{}{
			"error": err,
		})
		return err
	}

	logging.InfoWith("Check completed", map[string]interface{}{
		"skipped":     string(report.Skipped),
		"style_files": len(report.StyleFiles),
		"lint_files":  len(report.LintFiles),
	})
	return nil
}
