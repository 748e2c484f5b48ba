package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateFile checks that missing parent directories are created and that a file in the way is reported.
func TestCreateFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "nested")
	file, err := CreateFile(dir, "replay.log")
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.FileExists(t, filepath.Join(dir, "replay.log"))

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	_, err = CreateFile(blocker, "replay.log")
	assert.ErrorContains(t, err, "same name")
}
