package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.yaml", "a.hcl", "nested/c.toml", "notes.txt"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o600))
	}

	files, err := FindFilesByExtension(root, ".hcl", ".yaml", ".toml")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.yaml"),
		filepath.Join(root, "nested", "c.toml"),
	}, files)

	require.Panics(t, func() { _, _ = FindFilesByExtension(root) })
}
