package sniffer

import (
	"context"
	"fmt"
	"strings"

	"github.com/niels/git-sniffer/pkg/config"
	"github.com/niels/git-sniffer/pkg/logging"
	"github.com/niels/git-sniffer/pkg/runner"
)

// StyleArgs builds the PHP_CodeSniffer arguments for files
func StyleArgs(cfg config.StyleTool, files []string) []string {
	args := []string{
		"-s",
		"--standard=" + cfg.Standard,
		"--encoding=" + cfg.Encoding,
		"--extensions=" + strings.Join(config.NormalizeExtensions(cfg.Extensions), ","),
	}
	if len(cfg.Ignore) > 0 {
		args = append(args, "--ignore="+strings.Join(cfg.Ignore, ","))
	}
	return append(args, files...)
}

// LintArgs builds the ESLint arguments for files. configPath and ignorePath
// must already be resolved; an empty ignorePath disables ignore files.
func LintArgs(configPath, ignorePath string, files []string) []string {
	args := []string{"-c", configPath}
	if ignorePath != "" {
		args = append(args, "--ignore-path", ignorePath)
	} else {
		args = append(args, "--no-ignore")
	}
	args = append(args, "--quiet")
	return append(args, files...)
}

func (s *Sniffer) runStyle(ctx context.Context, scratch string, files []string) (string, error) {
	args := StyleArgs(s.cfg.Style, scratchPaths(scratch, files))
	return s.runTool(ctx, ToolStyle, s.resolve(s.cfg.Style.Bin), args, files)
}

func (s *Sniffer) runLint(ctx context.Context, scratch string, files []string) (string, error) {
	var ignore string
	if s.cfg.Lint.IgnorePath != "" {
		ignore = s.resolve(s.cfg.Lint.IgnorePath)
	}
	args := LintArgs(s.resolve(s.cfg.Lint.Config), ignore, scratchPaths(scratch, files))
	return s.runTool(ctx, ToolLint, s.resolve(s.cfg.Lint.Bin), args, files)
}

// runTool invokes a tool and returns its combined output. A non-zero exit is
// how the tools report violations, so only a failure to run is an error.
func (s *Sniffer) runTool(ctx context.Context, tool Tool, bin string, args []string, files []string) (string, error) {
	s.observer.ToolStarted(tool, files)

	logging.DebugWith("Running tool", map[string]interface{}{
		"tool":    string(tool),
		"command": runner.CommandLine(bin, args...),
	})

	res, err := s.runner.Run(ctx, s.dir, bin, args...)
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", tool, err)
	}

	output := string(res.Combined)
	logging.InfoWith("Tool finished", map[string]interface{}{
		"tool":      string(tool),
		"files":     len(files),
		"exit_code": res.ExitCode,
		"clean":     strings.TrimSpace(output) == "",
	})

	s.observer.ToolFinished(tool, output)
	return output, nil
}
