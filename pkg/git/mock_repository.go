package git

import (
	"fmt"
	"strings"
)

// MockSnapshotReader is an in-memory SnapshotReader for testing dependants.
// Blobs maps a staged path to its index content; blob ids are derived from the path.
type MockSnapshotReader struct {
	// IsGitRepositoryResult is the result to return from IsGitRepository
	IsGitRepositoryResult bool
	// RepositoryRoot is returned from GetRepositoryRoot
	RepositoryRoot string
	// Baseline is returned from ResolveBaseline
	Baseline string
	// BaselineError is returned from ResolveBaseline
	BaselineError error
	// StagedFiles is returned from GetStagedFiles
	StagedFiles []StagedFile
	// StagedFilesError is returned from GetStagedFiles
	StagedFilesError error
	// Blobs holds the staged content per path
	Blobs map[string][]byte
	// ReadBlobError is returned from ReadBlob when set
	ReadBlobError error
	// HooksDir is returned from GetHooksDir
	HooksDir string

	// Calls records the method names invoked, in order
	Calls []string
	// Baselines records the baseline passed to GetStagedFiles and GetStagedBlobID
	Baselines []string
}

// NewMockSnapshotReader creates a new MockSnapshotReader with default success values
func NewMockSnapshotReader() *MockSnapshotReader {
	return &MockSnapshotReader{
		IsGitRepositoryResult: true,
		RepositoryRoot:        "/mock/repo/root",
		Baseline:              HeadRef,
		StagedFiles:           []StagedFile{},
		Blobs:                 make(map[string][]byte),
		HooksDir:              "/mock/repo/root/.git/hooks",
	}
}

// Stage adds a staged file with the given content
func (m *MockSnapshotReader) Stage(path, status, content string) {
	m.StagedFiles = append(m.StagedFiles, StagedFile{Path: path, Status: status})
	m.Blobs[path] = []byte(content)
}

// IsGitRepository implements the SnapshotReader interface
func (m *MockSnapshotReader) IsGitRepository(dir string) (bool, error) {
	m.Calls = append(m.Calls, "IsGitRepository")
	return m.IsGitRepositoryResult, nil
}

// GetRepositoryRoot implements the SnapshotReader interface
func (m *MockSnapshotReader) GetRepositoryRoot(dir string) (string, error) {
	m.Calls = append(m.Calls, "GetRepositoryRoot")
	if !m.IsGitRepositoryResult {
		return "", ErrNotGitRepository
	}
	return m.RepositoryRoot, nil
}

// ResolveBaseline implements the SnapshotReader interface
func (m *MockSnapshotReader) ResolveBaseline(dir string) (string, error) {
	m.Calls = append(m.Calls, "ResolveBaseline")
	return m.Baseline, m.BaselineError
}

// GetStagedFiles implements the SnapshotReader interface
func (m *MockSnapshotReader) GetStagedFiles(dir string, baseline string) ([]StagedFile, error) {
	m.Calls = append(m.Calls, "GetStagedFiles")
	m.Baselines = append(m.Baselines, baseline)
	return m.StagedFiles, m.StagedFilesError
}

// GetStagedBlobID implements the SnapshotReader interface
func (m *MockSnapshotReader) GetStagedBlobID(dir string, baseline string, path string) (string, error) {
	m.Calls = append(m.Calls, "GetStagedBlobID")
	m.Baselines = append(m.Baselines, baseline)
	if _, ok := m.Blobs[path]; !ok {
		return "", fmt.Errorf("%w: %s", ErrPathNotStaged, path)
	}
	return "blob:" + path, nil
}

// ReadBlob implements the SnapshotReader interface
func (m *MockSnapshotReader) ReadBlob(dir string, id string) ([]byte, error) {
	m.Calls = append(m.Calls, "ReadBlob")
	if m.ReadBlobError != nil {
		return nil, m.ReadBlobError
	}
	content, ok := m.Blobs[strings.TrimPrefix(id, "blob:")]
	if !ok {
		return nil, fmt.Errorf("unknown blob %s", id)
	}
	return content, nil
}

// GetHooksDir implements the SnapshotReader interface
func (m *MockSnapshotReader) GetHooksDir(dir string) (string, error) {
	m.Calls = append(m.Calls, "GetHooksDir")
	return m.HooksDir, nil
}
