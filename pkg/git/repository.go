package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/niels/git-sniffer/pkg/runner"
)

// EmptyTreeHash is the id of the empty tree, used as the baseline before the
// first commit so every staged file counts as an addition
const EmptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// HeadRef is the baseline used when the repository has a commit
const HeadRef = "HEAD"

// Common errors
var (
	ErrNotGitRepository = errors.New("not a Git repository")
	ErrGitNotInstalled  = errors.New("Git executable not found")
	ErrPathNotStaged    = errors.New("path is not staged")
)

// StagedFile represents a staged file in the Git repository
type StagedFile struct {
	Path   string // Path relative to repository root
	Status string // Git status (A: added, C: copied, M: modified, R: renamed)
}

// SnapshotReader reads the staged (index) snapshot of a repository
type SnapshotReader interface {
	// IsGitRepository checks if the given directory is within a Git repository
	IsGitRepository(dir string) (bool, error)
	// GetRepositoryRoot returns the root directory of the Git repository
	GetRepositoryRoot(dir string) (string, error)
	// ResolveBaseline returns HEAD, or the empty tree when there is no commit yet
	ResolveBaseline(dir string) (string, error)
	// GetStagedFiles returns added, copied, modified and renamed files staged against baseline
	GetStagedFiles(dir string, baseline string) ([]StagedFile, error)
	// GetStagedBlobID returns the blob id the index holds for path
	GetStagedBlobID(dir string, baseline string, path string) (string, error)
	// ReadBlob returns the raw content of a blob
	ReadBlob(dir string, id string) ([]byte, error)
	// GetHooksDir returns the directory git runs hooks from
	GetHooksDir(dir string) (string, error)
}

// CLIReader implements SnapshotReader with git plumbing commands
type CLIReader struct {
	cmdRunner runner.Runner
}

// NewCLIReaderWithRunner creates a CLIReader on top of the given runner
func NewCLIReaderWithRunner(r runner.Runner) *CLIReader {
	return &CLIReader{cmdRunner: r}
}

// git runs a git command against dir and returns its stdout.
// A non-zero exit status is turned into an error carrying git's stderr.
func (d *CLIReader) git(dir string, args ...string) ([]byte, error) {
	res, err := d.run(dir, args...)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return res.Stdout, gitError(res)
	}
	return res.Stdout, nil
}

func (d *CLIReader) run(dir string, args ...string) (*runner.Result, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	res, err := d.cmdRunner.Run(context.Background(), "", "git", fullArgs...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrGitNotInstalled
		}
		return nil, err
	}
	return res, nil
}

func gitError(res *runner.Result) error {
	msg := strings.TrimSpace(string(res.Stderr))
	if strings.Contains(msg, "not a git repository") {
		return fmt.Errorf("%w: %s", ErrNotGitRepository, msg)
	}
	if msg == "" {
		msg = "no output"
	}
	return fmt.Errorf("git exited with status %d: %s", res.ExitCode, msg)
}

// IsGitRepository checks if the given directory is within a Git repository
func (d *CLIReader) IsGitRepository(dir string) (bool, error) {
	output, err := d.git(dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		if errors.Is(err, ErrNotGitRepository) {
			return false, nil
		}
		if errors.Is(err, ErrGitNotInstalled) {
			return false, err
		}
		return false, fmt.Errorf("failed to check if directory is a Git repository: %w", err)
	}

	return bytes.Equal(bytes.TrimSpace(output), []byte("true")), nil
}

// GetRepositoryRoot returns the root directory of the Git repository
func (d *CLIReader) GetRepositoryRoot(dir string) (string, error) {
	isRepo, err := d.IsGitRepository(dir)
	if err != nil {
		return "", err
	}
	if !isRepo {
		return "", ErrNotGitRepository
	}

	output, err := d.git(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("failed to get repository root: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// ResolveBaseline returns HEAD if the repository has a commit, otherwise the
// empty tree so the first commit is checked in full
func (d *CLIReader) ResolveBaseline(dir string) (string, error) {
	res, err := d.run(dir, "rev-parse", "--verify", "-q", HeadRef)
	if err != nil {
		return "", err
	}

	switch {
	case res.Success() && len(bytes.TrimSpace(res.Stdout)) > 0:
		return HeadRef, nil
	case res.ExitCode == 1:
		// --verify -q exits 1 without output when HEAD does not resolve
		return EmptyTreeHash, nil
	default:
		return "", fmt.Errorf("failed to resolve HEAD: %w", gitError(res))
	}
}

// GetStagedFiles returns files staged for commit that are added, copied,
// modified or renamed relative to baseline. Deletions are never listed.
func (d *CLIReader) GetStagedFiles(dir string, baseline string) ([]StagedFile, error) {
	output, err := d.git(dir, "diff-index", "--cached", "--name-status", "-z", "--diff-filter=ACMR", baseline, "--")
	if err != nil {
		return nil, fmt.Errorf("failed to get staged files: %w", err)
	}

	return parseStagedFiles(output), nil
}

// parseStagedFiles parses NUL separated `diff-index --name-status -z` output.
// Renames and copies carry two paths; the destination is the staged file.
func parseStagedFiles(output []byte) []StagedFile {
	var files []StagedFile

	fields := strings.Split(string(output), "\x00")
	for i := 0; i < len(fields); i++ {
		status := strings.TrimSpace(fields[i])
		if status == "" {
			continue
		}

		paths := 1
		if status[0] == 'R' || status[0] == 'C' {
			paths = 2
		}
		if i+paths >= len(fields) {
			break
		}

		path := fields[i+paths]
		i += paths

		if status[0] == 'D' || path == "" {
			continue
		}

		files = append(files, StagedFile{
			Path:   path,
			Status: string(status[0]),
		})
	}

	return files
}

// GetStagedBlobID returns the id of the blob the index holds for path.
// path is relative to the repository root, whatever dir inside it is given.
func (d *CLIReader) GetStagedBlobID(dir string, baseline string, path string) (string, error) {
	output, err := d.git(dir, "diff-index", "--cached", baseline, "--", topPathspec(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve staged blob for %s: %w", path, err)
	}

	// :<old mode> <new mode> <old id> <new id> <status>\t<path>
	line := strings.TrimSpace(string(output))
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) < 4 || !strings.HasPrefix(fields[0], ":") {
		return "", fmt.Errorf("%w: %s", ErrPathNotStaged, path)
	}

	return fields[3], nil
}

// topPathspec matches path literally from the repository root
func topPathspec(path string) string {
	return ":(top,literal)" + filepath.ToSlash(path)
}

// ReadBlob returns the raw content of the blob with the given id
func (d *CLIReader) ReadBlob(dir string, id string) ([]byte, error) {
	output, err := d.git(dir, "cat-file", "blob", id)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", id, err)
	}
	return output, nil
}

// GetHooksDir returns the hooks directory, honouring core.hooksPath
func (d *CLIReader) GetHooksDir(dir string) (string, error) {
	output, err := d.git(dir, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", fmt.Errorf("failed to locate hooks directory: %w", err)
	}

	hooksDir := strings.TrimSpace(string(output))
	if !filepath.IsAbs(hooksDir) {
		hooksDir = filepath.Join(dir, hooksDir)
	}
	return hooksDir, nil
}
