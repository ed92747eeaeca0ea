// Package hook installs git-sniffer into a repository's pre-commit hook.
//
// Only the lines between the section markers belong to git-sniffer. Anything
// else in the hook file is left alone on install and uninstall.
package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/niels/git-sniffer/pkg/version"
)

// Name is the hook file git-sniffer manages
const Name = "pre-commit"

const (
	shebang            = "#!/bin/sh\n"
	sectionBeginPrefix = "# --- BEGIN GIT-SNIFFER"
	sectionEnd         = "# --- END GIT-SNIFFER ---"
)

// Status describes the pre-commit hook of a repository
type Status struct {
	Path      string
	Exists    bool
	Installed bool
	// Foreign is true when the hook holds content besides the git-sniffer section
	Foreign bool
	// Unreachable is true when an exit line ahead of the section ends the
	// hook before git-sniffer runs
	Unreachable bool
}

// Path returns the pre-commit hook path inside hooksDir
func Path(hooksDir string) string {
	return filepath.Join(hooksDir, Name)
}

// Section returns the marked hook section that runs command
func Section(command string) string {
	return sectionBeginPrefix + " " + version.Short() + " ---\n" +
		"# Managed by git-sniffer install. Do not remove these markers.\n" +
		command + " || exit $?\n" +
		sectionEnd + "\n"
}

// Install writes the git-sniffer section into the pre-commit hook, creating
// the hook when needed. An existing section is replaced in place.
func Install(fs afero.Fs, hooksDir string, command string) (string, error) {
	if err := fs.MkdirAll(hooksDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create hooks directory: %w", err)
	}

	path := Path(hooksDir)
	existing, err := afero.ReadFile(fs, path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var content string
	if os.IsNotExist(err) || strings.TrimSpace(string(existing)) == "" {
		content = shebang + Section(command)
	} else {
		content = injectSection(string(existing), Section(command))
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")

	if err := afero.WriteFile(fs, path, []byte(content), 0755); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file
	if err := fs.Chmod(path, 0755); err != nil {
		return "", fmt.Errorf("failed to make %s executable: %w", path, err)
	}
	return path, nil
}

// Uninstall removes the git-sniffer section from the pre-commit hook. The
// hook file is deleted when nothing but the shebang remains. It reports
// whether a section was found.
func Uninstall(fs afero.Fs, hooksDir string) (bool, error) {
	path := Path(hooksDir)
	existing, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content, found := removeSection(string(existing))
	if !found {
		return false, nil
	}

	if onlyShebang(content) {
		if err := fs.Remove(path); err != nil {
			return true, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return true, nil
	}

	if err := afero.WriteFile(fs, path, []byte(content), 0755); err != nil {
		return true, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// GetStatus inspects the pre-commit hook in hooksDir
func GetStatus(fs afero.Fs, hooksDir string) (Status, error) {
	status := Status{Path: Path(hooksDir)}

	existing, err := afero.ReadFile(fs, status.Path)
	if os.IsNotExist(err) {
		return status, nil
	}
	if err != nil {
		return status, fmt.Errorf("failed to read %s: %w", status.Path, err)
	}

	status.Exists = true
	content := string(existing)
	rest, found := removeSection(content)
	status.Installed = found
	status.Foreign = !onlyShebang(rest)
	if start, _, ok := sectionBounds(content); ok {
		status.Unreachable = hasExit(content[:start])
	}
	return status, nil
}

// injectSection replaces the marked section of existing with section, or
// inserts it right after the shebang so it runs before the rest of the script
func injectSection(existing, section string) string {
	if start, end, ok := sectionBounds(existing); ok {
		return existing[:start] + section + existing[end:]
	}

	if !strings.HasPrefix(existing, "#!") {
		return section + "\n" + existing
	}
	i := strings.Index(existing, "\n")
	if i == -1 {
		return existing + "\n" + section
	}
	return existing[:i+1] + section + "\n" + existing[i+1:]
}

// removeSection drops the marked section and the blank line separating it
// from the rest of the script
func removeSection(content string) (string, bool) {
	start, end, ok := sectionBounds(content)
	if !ok {
		return content, false
	}
	switch {
	case start >= 2 && content[start-1] == '\n' && content[start-2] == '\n':
		start--
	case end < len(content) && content[end] == '\n':
		end++
	}
	return content[:start] + content[end:], true
}

// sectionBounds returns the byte range covering the full marker lines
func sectionBounds(content string) (int, int, bool) {
	beginIdx := strings.Index(content, sectionBeginPrefix)
	endIdx := strings.Index(content, sectionEnd)
	if beginIdx == -1 || endIdx == -1 || beginIdx > endIdx {
		return 0, 0, false
	}

	start := strings.LastIndex(content[:beginIdx], "\n") + 1

	end := endIdx + len(sectionEnd)
	if end < len(content) && content[end] == '\n' {
		end++
	}
	return start, end, true
}

// hasExit reports whether script has an unindented exit command
func hasExit(script string) bool {
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "exit" || strings.HasPrefix(line, "exit ") || strings.HasPrefix(line, "exit\t") {
			return true
		}
	}
	return false
}

func onlyShebang(content string) bool {
	trimmed := strings.TrimSpace(content)
	return trimmed == "" || (strings.HasPrefix(trimmed, "#!") && !strings.Contains(trimmed, "\n"))
}
