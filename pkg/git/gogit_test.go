package git

import (
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/niels/git-sniffer/pkg/config"
	"github.com/niels/git-sniffer/pkg/runner"
)

// TestGoGitReaderIntegration runs the reader contract with go-git
func TestGoGitReaderIntegration(t *testing.T) {
	readerContract(t, NewGoGitReader())
}

// TestGoGitReaderWithoutGitExecutable builds the repository with go-git alone
func TestGoGitReaderWithoutGitExecutable(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("Failed to init repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}

	reader := NewGoGitReader()

	writeFile(t, dir, "src/a.php", "<?php\n")
	if _, err := wt.Add("src/a.php"); err != nil {
		t.Fatalf("Failed to stage file: %v", err)
	}

	baseline, err := reader.ResolveBaseline(dir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if baseline != EmptyTreeHash {
		t.Errorf("Expected empty tree baseline, got %s", baseline)
	}

	files, err := reader.GetStagedFiles(dir, baseline)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 1 || files[0].Path != "src/a.php" || files[0].Status != "A" {
		t.Errorf("Expected src/a.php added, got %v", files)
	}

	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	baseline, err = reader.ResolveBaseline(dir)
	if err != nil || baseline != HeadRef {
		t.Fatalf("Expected HEAD baseline, got %s, %v", baseline, err)
	}

	files, err = reader.GetStagedFiles(dir, baseline)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected nothing staged after commit, got %v", files)
	}

	writeFile(t, dir, "src/a.php", "<?php echo 2;\n")
	if _, err := wt.Add("src/a.php"); err != nil {
		t.Fatalf("Failed to stage file: %v", err)
	}

	files, err = reader.GetStagedFiles(dir, baseline)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 1 || files[0].Status != "M" {
		t.Errorf("Expected src/a.php modified, got %v", files)
	}

	id, err := reader.GetStagedBlobID(dir, baseline, "src/a.php")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	content, err := reader.ReadBlob(dir, id)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(content) != "<?php echo 2;\n" {
		t.Errorf("Expected staged content, got %q", string(content))
	}
}

func TestNewSnapshotReader(t *testing.T) {
	cfg := config.Default()

	reader, err := NewSnapshotReader(cfg, &runner.FakeRunner{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, ok := reader.(*CLIReader); !ok {
		t.Errorf("Expected CLIReader for the cli backend, got %T", reader)
	}

	cfg.Git.Backend = config.BackendGoGit
	reader, err = NewSnapshotReader(cfg, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, ok := reader.(*GoGitReader); !ok {
		t.Errorf("Expected GoGitReader for the go-git backend, got %T", reader)
	}

	cfg.Git.Backend = "svn"
	if _, err := NewSnapshotReader(cfg, nil); err == nil {
		t.Error("Expected error for unsupported backend")
	}
}
