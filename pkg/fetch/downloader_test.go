package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_LocalFileIsCopied(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "protoc-gen-demo")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\necho demo\n"), 0o644))

	dst := filepath.Join(dir, "out", "nested", "protoc-gen-demo")
	d := NewDownloader(nil)
	require.NoError(t, d.Download(context.Background(), "file://"+src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho demo\n", string(data))

	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink, "local sources must be copied")
}

func TestDownload_RefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("b"), 0o644))

	err := NewDownloader(nil).Download(context.Background(), "file://"+src, dst)
	assert.ErrorIs(t, err, ErrDestinationExists)
}

func TestDownload_MissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst")

	err := NewDownloader(nil).Download(context.Background(), "file://"+filepath.Join(dir, "missing"), dst)
	require.Error(t, err)
	assert.NoFileExists(t, dst)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"https://example.com/releases/protoc-gen-foo", "protoc-gen-foo"},
		{"https://example.com/releases/protoc-gen-foo?checksum=sha256:abcd", "protoc-gen-foo"},
		{"s3::https://s3.amazonaws.com/bucket/plugins/protoc-gen-bar", "protoc-gen-bar"},
		{"file:///opt/plugins/protoc-gen-baz", "protoc-gen-baz"},
		{"./plugins/protoc-gen-qux", "protoc-gen-qux"},
		{"https://example.com/", "download"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.src))
		})
	}
}
