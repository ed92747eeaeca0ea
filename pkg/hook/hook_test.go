package hook

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hooksDir = "/repo/.git/hooks"

func readHook(t *testing.T, fs afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(fs, Path(hooksDir))
	require.NoError(t, err)
	return string(data)
}

func TestInstallCreatesHook(t *testing.T) {
	fs := afero.NewMemMapFs()

	path, err := Install(fs, hooksDir, "git-sniffer check")
	require.NoError(t, err)
	assert.Equal(t, "/repo/.git/hooks/pre-commit", path)

	content := readHook(t, fs)
	assert.Equal(t, shebang+Section("git-sniffer check"), content)
	assert.Contains(t, content, "git-sniffer check || exit $?\n")

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "-rwxr-xr-x", info.Mode().Perm().String())
}

func TestInstallPreservesExistingHook(t *testing.T) {
	fs := afero.NewMemMapFs()
	existing := "#!/bin/bash\nmake test\n"
	require.NoError(t, afero.WriteFile(fs, Path(hooksDir), []byte(existing), 0644))

	_, err := Install(fs, hooksDir, "git-sniffer check")
	require.NoError(t, err)

	content := readHook(t, fs)
	assert.Equal(t, "#!/bin/bash\n"+Section("git-sniffer check")+"\nmake test\n", content)

	info, err := fs.Stat(Path(hooksDir))
	require.NoError(t, err)
	assert.Equal(t, "-rwxr-xr-x", info.Mode().Perm().String())
}

func TestInstallRunsBeforeExistingExit(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{
			name:     "shebang and exit",
			existing: "#!/bin/sh\nmake test\nexit 0\n",
			want:     "#!/bin/sh\n" + Section("git-sniffer check") + "\nmake test\nexit 0\n",
		},
		{
			name:     "no shebang",
			existing: "make test\nexit 0\n",
			want:     Section("git-sniffer check") + "\nmake test\nexit 0\n",
		},
		{
			name:     "shebang without newline",
			existing: "#!/bin/sh",
			want:     "#!/bin/sh\n" + Section("git-sniffer check"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, Path(hooksDir), []byte(tt.existing), 0755))

			_, err := Install(fs, hooksDir, "git-sniffer check")
			require.NoError(t, err)
			assert.Equal(t, tt.want, readHook(t, fs))

			status, err := GetStatus(fs, hooksDir)
			require.NoError(t, err)
			assert.False(t, status.Unreachable)
		})
	}
}

func TestInstallThenUninstallRestoresHook(t *testing.T) {
	for _, existing := range []string{
		"#!/bin/sh\nmake test\nexit 0\n",
		"make test\n",
	} {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, Path(hooksDir), []byte(existing), 0755))

		_, err := Install(fs, hooksDir, "git-sniffer check")
		require.NoError(t, err)
		found, err := Uninstall(fs, hooksDir)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, existing, readHook(t, fs))
	}
}

func TestInstallReplacesSection(t *testing.T) {
	fs := afero.NewMemMapFs()
	before := "#!/bin/sh\necho before\n"
	after := "echo after\n"
	require.NoError(t, afero.WriteFile(fs, Path(hooksDir),
		[]byte(before+Section("old-sniffer")+after), 0755))

	_, err := Install(fs, hooksDir, "git-sniffer check --env ci")
	require.NoError(t, err)

	content := readHook(t, fs)
	assert.Equal(t, before+Section("git-sniffer check --env ci")+after, content)
	assert.NotContains(t, content, "old-sniffer")
}

func TestInstallIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Install(fs, hooksDir, "git-sniffer check")
	require.NoError(t, err)
	first := readHook(t, fs)

	_, err = Install(fs, hooksDir, "git-sniffer check")
	require.NoError(t, err)
	assert.Equal(t, first, readHook(t, fs))
}

func TestUninstall(t *testing.T) {
	tests := []struct {
		name       string
		existing   string
		wantFound  bool
		wantExists bool
		wantLeft   string
	}{
		{
			name:       "only our section",
			existing:   shebang + Section("git-sniffer check"),
			wantFound:  true,
			wantExists: false,
		},
		{
			name:       "user content kept",
			existing:   "#!/bin/sh\nmake test\n\n" + Section("git-sniffer check"),
			wantFound:  true,
			wantExists: true,
			wantLeft:   "#!/bin/sh\nmake test\n",
		},
		{
			name:       "no section",
			existing:   "#!/bin/sh\nmake test\n",
			wantFound:  false,
			wantExists: true,
			wantLeft:   "#!/bin/sh\nmake test\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, Path(hooksDir), []byte(tt.existing), 0755))

			found, err := Uninstall(fs, hooksDir)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)

			exists, err := afero.Exists(fs, Path(hooksDir))
			require.NoError(t, err)
			assert.Equal(t, tt.wantExists, exists)
			if tt.wantExists {
				assert.Equal(t, tt.wantLeft, readHook(t, fs))
			}
		})
	}
}

func TestUninstallWithoutHook(t *testing.T) {
	found, err := Uninstall(afero.NewMemMapFs(), hooksDir)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetStatus(t *testing.T) {
	fs := afero.NewMemMapFs()

	status, err := GetStatus(fs, hooksDir)
	require.NoError(t, err)
	assert.False(t, status.Exists)
	assert.False(t, status.Installed)

	_, err = Install(fs, hooksDir, "git-sniffer check")
	require.NoError(t, err)

	status, err = GetStatus(fs, hooksDir)
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.True(t, status.Installed)
	assert.False(t, status.Foreign)

	require.NoError(t, afero.WriteFile(fs, Path(hooksDir),
		[]byte("#!/bin/sh\nmake test\n\n"+Section("git-sniffer check")), 0755))

	status, err = GetStatus(fs, hooksDir)
	require.NoError(t, err)
	assert.True(t, status.Installed)
	assert.True(t, status.Foreign)

	require.NoError(t, afero.WriteFile(fs, Path(hooksDir),
		[]byte("#!/bin/sh\nmake test\nexit 0\n\n"+Section("git-sniffer check")), 0755))

	status, err = GetStatus(fs, hooksDir)
	require.NoError(t, err)
	assert.True(t, status.Installed)
	assert.True(t, status.Unreachable)
}

func TestHasExit(t *testing.T) {
	assert.True(t, hasExit("#!/bin/sh\nexit 0\n"))
	assert.True(t, hasExit("#!/bin/sh\nexit\n"))
	assert.False(t, hasExit("#!/bin/sh\nif [ -z \"$X\" ]; then\n  exit 1\nfi\n"))
	assert.False(t, hasExit("#!/bin/sh\nexiting=1\n"))
}
