package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "empty", path: "", wantErr: "cannot be empty"},
		{name: "semicolon", path: "slots.yaml; rm -rf /", wantErr: "forbidden character"},
		{name: "subshell", path: "$(whoami).yaml", wantErr: "forbidden character"},
		{name: "newline", path: "slots\n.yaml", wantErr: "forbidden character"},
		{name: "missing file", path: filepath.Join(dir, "missing.yaml")},
		{name: "dot segments", path: filepath.Join(dir, "a", "..", "slots.yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanPath(tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(got))
			assert.NotContains(t, got, "..")
		})
	}
}

func TestCleanPath_ResolvesSymlinks(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	target := filepath.Join(dir, "slots.yaml")
	require.NoError(t, os.WriteFile(target, []byte("time_slots: []\n"), 0o600))
	link := filepath.Join(dir, "link.yaml")
	require.NoError(t, os.Symlink(target, link))

	got, err := CleanPath(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meals.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meals: []\n"), 0o600))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "meals: []\n", string(data))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFile_Directory(t *testing.T) {
	_, err := ReadFile(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a regular file")
}

func TestReadFile_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.yaml")
	require.NoError(t, os.WriteFile(path, make([]byte, MaxFileSize+1), 0o600))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}
