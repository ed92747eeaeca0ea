package runner

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell tests require a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not installed, skipping")
	}
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	requireShell(t)

	r := NewExecRunner()
	res, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "printf out; printf err >&2")
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Equal(t, "out", string(res.Stdout))
	assert.Equal(t, "err", string(res.Stderr))
	assert.Len(t, res.Combined, 6)
	assert.Contains(t, string(res.Combined), "out")
	assert.Contains(t, string(res.Combined), "err")
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	requireShell(t)

	r := NewExecRunner()
	res, err := r.Run(context.Background(), "", "sh", "-c", "echo violation; exit 2")
	require.NoError(t, err)

	assert.False(t, res.Success())
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "violation\n", string(res.Combined))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner()
	_, err := r.Run(context.Background(), "", "git-sniffer-definitely-missing-binary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound), "expected exec.ErrNotFound, got %v", err)
}

func TestExecRunnerRunsInDir(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	r := NewExecRunner()
	res, err := r.Run(context.Background(), dir, "sh", "-c", "pwd -P")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Stdout)
}

func TestFakeRunnerRecordsCalls(t *testing.T) {
	f := &FakeRunner{
		RunFunc: func(dir string, name string, args ...string) (*Result, error) {
			if name == "phpcs" {
				return Output("FILE: a.php"), nil
			}
			return &Result{}, nil
		},
	}

	res, err := f.Run(context.Background(), "/repo", "phpcs", "-s", "a.php")
	require.NoError(t, err)
	assert.Equal(t, "FILE: a.php", string(res.Combined))

	_, err = f.Run(context.Background(), "/repo", "eslint", "b.js")
	require.NoError(t, err)

	calls := f.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"-s", "a.php"}, calls[0].Args)
	assert.Len(t, f.CallsTo("eslint"), 1)
	assert.Equal(t, "[/repo] eslint b.js", calls[1].String())
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "phpcs -s --standard=PSR2", CommandLine("phpcs", "-s", "--standard=PSR2"))
	assert.Equal(t, `eslint -c "my config.json" ""`, CommandLine("eslint", "-c", "my config.json", ""))
}
