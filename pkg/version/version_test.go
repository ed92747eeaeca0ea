package version

import (
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = origCommit, origDate })

	GitCommit, BuildDate = "", ""
	info := GetVersionInfo()
	if !strings.HasPrefix(info, "git-sniffer version "+Version) {
		t.Errorf("Expected version header, got: %s", info)
	}
	if strings.Contains(info, "Git commit") {
		t.Errorf("Expected no commit line without a commit, got: %s", info)
	}

	GitCommit, BuildDate = "abc1234", "2024-01-01"
	info = GetVersionInfo()
	for _, want := range []string{"Git commit: abc1234", "Build date: 2024-01-01", "Go version:", "Platform:"} {
		if !strings.Contains(info, want) {
			t.Errorf("Expected %q in version info, got: %s", want, info)
		}
	}
}

func TestShort(t *testing.T) {
	if got := Short(); got != "git-sniffer v"+Version {
		t.Errorf("Unexpected short version: %s", got)
	}
}
