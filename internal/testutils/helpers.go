package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupStoryDir creates a temporary directory holding files.
// It returns the absolute path to the temp dir.
// It fails the test immediately on error.
func SetupStoryDir(t *testing.T, files map[string]string) string {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	WriteFiles(t, absPath, files)
	return absPath
}

// WriteFiles writes files (slash separated paths relative to root),
// creating parent directories as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755), "Failed to create %s", filepath.Dir(p))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644), "Failed to write %s", name)
	}
}
