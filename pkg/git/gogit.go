package git

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GoGitReader implements SnapshotReader by reading the repository with go-git,
// so no git executable is needed
type GoGitReader struct{}

// NewGoGitReader creates a new GoGitReader
func NewGoGitReader() *GoGitReader {
	return &GoGitReader{}
}

func (g *GoGitReader) open(dir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotGitRepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// IsGitRepository checks if the given directory is within a Git repository
func (g *GoGitReader) IsGitRepository(dir string) (bool, error) {
	_, err := g.open(dir)
	if errors.Is(err, ErrNotGitRepository) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetRepositoryRoot returns the root directory of the working tree
func (g *GoGitReader) GetRepositoryRoot(dir string) (string, error) {
	repo, err := g.open(dir)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get repository root: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// ResolveBaseline returns HEAD if the repository has a commit, otherwise the empty tree
func (g *GoGitReader) ResolveBaseline(dir string) (string, error) {
	repo, err := g.open(dir)
	if err != nil {
		return "", err
	}

	_, err = repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return EmptyTreeHash, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return HeadRef, nil
}

// baselineFiles maps each file path in the baseline tree to its entry
func (g *GoGitReader) baselineFiles(repo *gogit.Repository, baseline string) (map[string]*object.File, error) {
	files := make(map[string]*object.File)
	if baseline == EmptyTreeHash {
		return files, nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(baseline))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", baseline, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", hash, err)
	}

	err = tree.Files().ForEach(func(f *object.File) error {
		files[f.Name] = f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tree of %s: %w", hash, err)
	}
	return files, nil
}

// GetStagedFiles compares the index against the baseline tree. An index entry
// that is new is reported as added, one whose content or mode changed as
// modified. Paths only present in the baseline are deletions and are skipped.
func (g *GoGitReader) GetStagedFiles(dir string, baseline string) ([]StagedFile, error) {
	repo, err := g.open(dir)
	if err != nil {
		return nil, err
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	base, err := g.baselineFiles(repo, baseline)
	if err != nil {
		return nil, err
	}

	var files []StagedFile
	for _, e := range idx.Entries {
		if e.Stage != index.Merged || e.Mode == filemode.Submodule {
			continue
		}

		prev, ok := base[e.Name]
		switch {
		case !ok:
			files = append(files, StagedFile{Path: e.Name, Status: "A"})
		case prev.Hash != e.Hash || prev.Mode != e.Mode:
			files = append(files, StagedFile{Path: e.Name, Status: "M"})
		}
	}

	return files, nil
}

// GetStagedBlobID returns the blob id the index holds for path
func (g *GoGitReader) GetStagedBlobID(dir string, baseline string, path string) (string, error) {
	repo, err := g.open(dir)
	if err != nil {
		return "", err
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("failed to read index: %w", err)
	}

	entry, err := idx.Entry(filepath.ToSlash(path))
	if errors.Is(err, index.ErrEntryNotFound) {
		return "", fmt.Errorf("%w: %s", ErrPathNotStaged, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve staged blob for %s: %w", path, err)
	}
	return entry.Hash.String(), nil
}

// ReadBlob returns the raw content of the blob with the given id
func (g *GoGitReader) ReadBlob(dir string, id string) ([]byte, error) {
	repo, err := g.open(dir)
	if err != nil {
		return nil, err
	}

	blob, err := repo.BlobObject(plumbing.NewHash(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", id, err)
	}

	r, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", id, err)
	}
	defer r.Close()

	return io.ReadAll(r)
}

// GetHooksDir returns core.hooksPath when set, otherwise .git/hooks
func (g *GoGitReader) GetHooksDir(dir string) (string, error) {
	repo, err := g.open(dir)
	if err != nil {
		return "", err
	}
	root, err := g.GetRepositoryRoot(dir)
	if err != nil {
		return "", err
	}

	cfg, err := repo.Config()
	if err != nil {
		return "", fmt.Errorf("failed to read repository config: %w", err)
	}
	if hooksPath := cfg.Raw.Section("core").Option("hooksPath"); hooksPath != "" {
		if !filepath.IsAbs(hooksPath) {
			hooksPath = filepath.Join(root, hooksPath)
		}
		return hooksPath, nil
	}

	return filepath.Join(root, ".git", "hooks"), nil
}
