package git

import (
	"errors"
	"fmt"

	"github.com/niels/git-sniffer/pkg/config"
	"github.com/niels/git-sniffer/pkg/runner"
)

// NewSnapshotReader returns the reader for the configured backend
func NewSnapshotReader(cfg *config.Config, r runner.Runner) (SnapshotReader, error) {
	switch cfg.Git.Backend {
	case "", config.BackendCLI:
		return NewCLIReaderWithRunner(r), nil
	case config.BackendGoGit:
		return NewGoGitReader(), nil
	default:
		return nil, fmt.Errorf("unsupported git backend: %s", cfg.Git.Backend)
	}
}

// RepositoryRoot returns the top of the working tree containing dir. The git
// executable is asked first and go-git is used when it is not installed.
func RepositoryRoot(dir string, r runner.Runner) (string, error) {
	root, err := NewCLIReaderWithRunner(r).GetRepositoryRoot(dir)
	if errors.Is(err, ErrGitNotInstalled) {
		return NewGoGitReader().GetRepositoryRoot(dir)
	}
	return root, err
}
