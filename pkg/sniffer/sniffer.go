// Package sniffer runs the configured style and lint tools against the staged
// snapshot of a repository.
//
// Only content held by the git index is checked: staged blobs are copied into
// a scratch directory and the tools run against those copies, so edits left
// in the working tree never influence the result.
package sniffer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/niels/git-sniffer/pkg/config"
	"github.com/niels/git-sniffer/pkg/git"
	"github.com/niels/git-sniffer/pkg/logging"
	"github.com/niels/git-sniffer/pkg/runner"
	"github.com/spf13/afero"
)

// Configuration errors. Each names the artifact that is missing.
var (
	ErrStyleBinNotFound   = errors.New("PHP CodeSniffer bin not found")
	ErrLintBinNotFound    = errors.New("ESLint bin not found")
	ErrLintConfigNotFound = errors.New("ESLint config file not found")
	ErrLintIgnoreNotFound = errors.New("ESLint ignore file not found")
	ErrNoToolConfigured   = errors.New("Eslint bin and Phpcs bin are not configured")
	ErrUnsafeScratchDir   = errors.New("scratch directory must not contain the working directory")
	ErrViolations         = errors.New("coding standard violations found")
)

// Tool identifies one of the two analysis tools
type Tool string

const (
	ToolStyle Tool = "PHP CodeSniffer"
	ToolLint  Tool = "ESLint"
)

// SkipReason explains why a run ended without invoking any tool
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipEnvironment     SkipReason = "environment"
	SkipNoStagedFiles   SkipReason = "no-staged-files"
	SkipNoMatchingFiles SkipReason = "no-matching-files"
)

// Report describes the outcome of a single run
type Report struct {
	Baseline    string
	Staged      []string
	StyleFiles  []string
	LintFiles   []string
	StyleOutput string
	LintOutput  string
	Skipped     SkipReason
}

// Failed reports whether any tool produced output
func (r *Report) Failed() bool {
	return strings.TrimSpace(r.StyleOutput) != "" || strings.TrimSpace(r.LintOutput) != ""
}

// Observer is notified as a run progresses
type Observer interface {
	StagedFiles(baseline string, files []string)
	ToolStarted(tool Tool, files []string)
	ToolFinished(tool Tool, output string)
}

type nopObserver struct{}

func (nopObserver) StagedFiles(string, []string) {}
func (nopObserver) ToolStarted(Tool, []string)   {}
func (nopObserver) ToolFinished(Tool, string)    {}

// Options carries the collaborators of a Sniffer. Zero values are replaced
// with the production implementations. Dir is the working directory that
// relative configuration paths resolve against.
type Options struct {
	Environment string
	Dir         string
	Reader      git.SnapshotReader
	Runner      runner.Runner
	Fs          afero.Fs
	Observer    Observer
}

// Sniffer checks the staged snapshot with the configured tools
type Sniffer struct {
	cfg         *config.Config
	environment string
	dir         string
	reader      git.SnapshotReader
	runner      runner.Runner
	fs          afero.Fs
	observer    Observer
}

// New creates a Sniffer for cfg
func New(cfg *config.Config, opts Options) (*Sniffer, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}

	s := &Sniffer{
		cfg:         cfg,
		environment: opts.Environment,
		dir:         opts.Dir,
		reader:      opts.Reader,
		runner:      opts.Runner,
		fs:          opts.Fs,
		observer:    opts.Observer,
	}

	if s.dir == "" {
		s.dir = "."
	}
	if s.runner == nil {
		s.runner = runner.NewExecRunner()
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.reader == nil {
		reader, err := git.NewSnapshotReader(cfg, s.runner)
		if err != nil {
			return nil, err
		}
		s.reader = reader
	}

	return s, nil
}

// Run executes one check of the staged snapshot.
// It returns ErrViolations together with the report when a tool produced output.
func (s *Sniffer) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if s.environment != s.cfg.Env {
		logging.DebugWith("Environment does not match, skipping", map[string]interface{}{
			"environment": s.environment,
			"target":      s.cfg.Env,
		})
		report.Skipped = SkipEnvironment
		return report, nil
	}

	if err := s.validate(); err != nil {
		logging.ErrorWith("Configuration check failed", map[string]interface{}{
			"error": err,
		})
		return report, err
	}

	baseline, err := s.reader.ResolveBaseline(s.dir)
	if err != nil {
		return report, fmt.Errorf("failed to resolve baseline: %w", err)
	}
	report.Baseline = baseline

	staged, err := s.reader.GetStagedFiles(s.dir, baseline)
	if err != nil {
		return report, fmt.Errorf("failed to list staged files: %w", err)
	}
	for _, f := range staged {
		report.Staged = append(report.Staged, f.Path)
	}

	logging.InfoWith("Found staged files", map[string]interface{}{
		"baseline": baseline,
		"count":    len(report.Staged),
	})
	s.observer.StagedFiles(baseline, report.Staged)

	if len(report.Staged) == 0 {
		report.Skipped = SkipNoStagedFiles
		return report, nil
	}

	report.StyleFiles, report.LintFiles = s.filter(report.Staged)
	if len(report.StyleFiles) == 0 && len(report.LintFiles) == 0 {
		logging.Info("No staged files match the configured extensions")
		report.Skipped = SkipNoMatchingFiles
		return report, nil
	}

	scratch := s.scratchDir()
	if err := s.prepareScratch(scratch); err != nil {
		return report, err
	}
	defer s.removeScratch(scratch)

	if err := s.materialize(scratch, baseline, union(report.Staged, report.StyleFiles, report.LintFiles)); err != nil {
		return report, err
	}

	if len(report.StyleFiles) > 0 {
		report.StyleOutput, err = s.runStyle(ctx, scratch, report.StyleFiles)
		if err != nil {
			return report, err
		}
	}

	if len(report.LintFiles) > 0 {
		report.LintOutput, err = s.runLint(ctx, scratch, report.LintFiles)
		if err != nil {
			return report, err
		}
	}

	if report.Failed() {
		return report, ErrViolations
	}
	return report, nil
}

// validate checks that every configured binary and config file exists.
// It only touches the filesystem, never a subprocess.
func (s *Sniffer) validate() error {
	if s.cfg.StyleEnabled() {
		bin := s.resolve(s.cfg.Style.Bin)
		if !s.exists(bin) {
			return fmt.Errorf("%w: %s", ErrStyleBinNotFound, bin)
		}
	}

	if s.cfg.LintEnabled() {
		bin := s.resolve(s.cfg.Lint.Bin)
		if !s.exists(bin) {
			return fmt.Errorf("%w: %s", ErrLintBinNotFound, bin)
		}
		cfgFile := s.resolve(s.cfg.Lint.Config)
		if cfgFile == "" || !s.exists(cfgFile) {
			return fmt.Errorf("%w: %s", ErrLintConfigNotFound, cfgFile)
		}
		if s.cfg.Lint.IgnorePath != "" {
			ignore := s.resolve(s.cfg.Lint.IgnorePath)
			if !s.exists(ignore) {
				return fmt.Errorf("%w: %s", ErrLintIgnoreNotFound, ignore)
			}
		}
	}

	if !s.cfg.StyleEnabled() && !s.cfg.LintEnabled() {
		return ErrNoToolConfigured
	}

	return s.checkScratchDir()
}

// checkScratchDir refuses a scratch directory that would remove the working
// directory or one of its parents when cleared
func (s *Sniffer) checkScratchDir() error {
	scratch, err := filepath.Abs(s.scratchDir())
	if err != nil {
		return fmt.Errorf("failed to resolve scratch directory: %w", err)
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	rel, err := filepath.Rel(scratch, dir)
	if err == nil && (rel == "." || !strings.HasPrefix(rel, "..")) {
		return fmt.Errorf("%w: %s", ErrUnsafeScratchDir, scratch)
	}
	return nil
}

func (s *Sniffer) exists(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

func (s *Sniffer) resolve(path string) string {
	return config.Resolve(s.dir, path)
}

func (s *Sniffer) scratchDir() string {
	return s.resolve(s.cfg.ScratchDir)
}

// filter splits staged paths into the subsets each configured tool checks.
// A path may land in both, one or neither.
func (s *Sniffer) filter(paths []string) (style []string, lint []string) {
	styleExts := extensionSet(s.cfg.Style.Extensions)
	lintExts := extensionSet(s.cfg.Lint.Extensions)

	for _, p := range paths {
		ext := strings.TrimPrefix(filepath.Ext(p), ".")
		if ext == "" {
			continue
		}
		if s.cfg.StyleEnabled() && styleExts[ext] {
			style = append(style, p)
		}
		if s.cfg.LintEnabled() && lintExts[ext] {
			lint = append(lint, p)
		}
	}
	return style, lint
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool)
	for _, e := range config.NormalizeExtensions(exts) {
		set[e] = true
	}
	return set
}

// union returns the paths of order present in any subset, each once
func union(order []string, subsets ...[]string) []string {
	wanted := make(map[string]bool)
	for _, subset := range subsets {
		for _, p := range subset {
			wanted[p] = true
		}
	}

	var out []string
	for _, p := range order {
		if wanted[p] {
			out = append(out, p)
			delete(wanted, p)
		}
	}
	return out
}
