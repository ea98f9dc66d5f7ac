package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content to name inside a fresh temporary directory and
// returns the absolute path of the file. It fails the test immediately on error.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := WriteFiles(t, map[string]string{name: content})
	return filepath.Join(dir, name)
}

// WriteFiles seeds a temporary directory with files and returns its absolute path.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		path := filepath.Join(absPath, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to seed %s", name)
	}
	return absPath
}
