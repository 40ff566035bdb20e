package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRegistrar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roots.txt")
	r := fileRegistrar(path)

	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, r.RegisterSourceRoot(a))
	require.NoError(t, r.RegisterSourceRoot(b))
	require.NoError(t, r.RegisterSourceRoot(a))

	lines, err := readLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, lines)
}

func TestFileRegistrar_UnwritableFile(t *testing.T) {
	dir := t.TempDir()
	r := fileRegistrar(filepath.Join(dir, "missing", "roots.txt"))

	assert.Error(t, r.RegisterSourceRoot(dir))
}

func TestLogRegistrar(t *testing.T) {
	assert.NoError(t, logRegistrar(observability.NopLogger()).RegisterSourceRoot("out"))
}

func TestReadLines_Missing(t *testing.T) {
	lines, err := readLines(filepath.Join(t.TempDir(), "nope"))

	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestCurrentUser(t *testing.T) {
	if os.Getuid() < 0 {
		assert.Empty(t, currentUser())
		return
	}
	assert.NotEmpty(t, currentUser())
}
