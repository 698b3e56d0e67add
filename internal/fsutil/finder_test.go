package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.hcl", "a.hcl", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.hcl"), 0o755))

	files, err := ListFilesByExtension(dir, ".hcl")
	require.NoError(t, err)

	// Sorted, no directories, no other extensions.
	assert.Equal(t, []string{
		filepath.Join(dir, "a.hcl"),
		filepath.Join(dir, "b.hcl"),
	}, files)
}

func TestListFilesByExtensionEmptyDir(t *testing.T) {
	files, err := ListFilesByExtension(t.TempDir(), ".hcl")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListFilesByExtensionMissingDir(t *testing.T) {
	_, err := ListFilesByExtension(filepath.Join(t.TempDir(), "missing"), ".hcl")
	assert.Error(t, err)
}

func TestListFilesByExtensionPanicsOnEmptyExtension(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = ListFilesByExtension(t.TempDir(), "")
	})
}
