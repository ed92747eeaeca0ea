package sniffer

import (
	"fmt"
	"path/filepath"

	"github.com/niels/git-sniffer/pkg/logging"
	"github.com/spf13/afero"
)

// prepareScratch clears a scratch directory left over by an aborted run and
// creates it fresh
func (s *Sniffer) prepareScratch(scratch string) error {
	if err := s.fs.RemoveAll(scratch); err != nil {
		return fmt.Errorf("failed to clear scratch directory %s: %w", scratch, err)
	}
	if err := s.fs.MkdirAll(scratch, 0755); err != nil {
		return fmt.Errorf("failed to create scratch directory %s: %w", scratch, err)
	}
	return nil
}

func (s *Sniffer) removeScratch(scratch string) {
	if err := s.fs.RemoveAll(scratch); err != nil {
		logging.WarnWith("Failed to remove scratch directory", map[string]interface{}{
			"path":  scratch,
			"error": err,
		})
	}
}

// materialize writes the staged content of each path into scratch, keeping
// the path relative to the repository
func (s *Sniffer) materialize(scratch string, baseline string, paths []string) error {
	for _, p := range paths {
		id, err := s.reader.GetStagedBlobID(s.dir, baseline, p)
		if err != nil {
			return err
		}

		content, err := s.reader.ReadBlob(s.dir, id)
		if err != nil {
			return err
		}

		target := scratchPath(scratch, p)
		if err := s.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
		if err := afero.WriteFile(s.fs, target, content, 0644); err != nil {
			return fmt.Errorf("failed to write staged copy of %s: %w", p, err)
		}

		logging.DebugWith("Copied staged file", map[string]interface{}{
			"path": p,
			"blob": id,
		})
	}
	return nil
}

func scratchPath(scratch, path string) string {
	return filepath.Join(scratch, filepath.FromSlash(path))
}

func scratchPaths(scratch string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, scratchPath(scratch, p))
	}
	return out
}
