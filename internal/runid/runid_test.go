package runid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCounterSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "last_run_id.txt")
	gen := NewFileCounter(path)

	for i, want := range []string{"run001", "run002", "run003"} {
		id, err := gen.Next()
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, want, id)
	}

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3", string(b))
}

func TestFileCounterResumesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run_id.txt")
	require.NoError(t, os.WriteFile(path, []byte("41\n"), 0o644))

	id, err := NewFileCounter(path).Next()
	require.NoError(t, err)
	assert.Equal(t, "run042", id)
}

func TestFileCounterCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run_id.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a number"), 0o644))

	_, err := NewFileCounter(path).Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}
