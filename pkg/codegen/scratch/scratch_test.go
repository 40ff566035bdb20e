package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesUniqueRunDirectories(t *testing.T) {
	base := t.TempDir()

	a, err := New(base)
	require.NoError(t, err)
	b, err := New(base)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID(), b.RunID())
	assert.Equal(t, filepath.Join(base, a.RunID()), a.Root())
	assert.DirExists(t, a.Root())
	assert.DirExists(t, b.Root())
}

func TestDir_IsCreateOnce(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	dir, err := s.Dir("plugins", "jvm", "abc")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.True(t, strings.HasPrefix(dir, s.Root()))

	_, err = s.Dir("plugins", "jvm", "def")
	require.NoError(t, err, "sibling directories share parents")

	_, err = s.Dir("plugins", "jvm", "abc")
	assert.ErrorIs(t, err, ErrExists)
}

func TestDir_NeedsSegments(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Dir()
	assert.Error(t, err)
}

func TestCreateFile_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.txt")

	require.NoError(t, CreateFile(path, []byte("first"), 0o644))
	err := CreateFile(path, []byte("second"), 0o644)
	assert.ErrorIs(t, err, ErrExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestCreateFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin")

	require.NoError(t, CreateFrom(path, strings.NewReader("binary"), 0o755))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))

	assert.ErrorIs(t, CreateFrom(path, strings.NewReader("x"), 0o755), ErrExists)
}

func TestRemove(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = s.Dir("sources", "x")
	require.NoError(t, err)

	require.NoError(t, s.Remove())
	assert.NoDirExists(t, s.Root())
}
