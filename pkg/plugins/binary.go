package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/scratch"
	"github.com/platinummonkey/protogen/pkg/fetch"
)

// resolveCoordinate fetches a native plugin from the artifact repository
// and copies it into plugins/coordinate/<id> so the repository copy is
// never modified. Type defaults to exe and Classifier to the host platform.
func (c *Catalog) resolveCoordinate(ctx context.Context, id string, coord codegen.Coordinate) (string, error) {
	if coord.Type == "" {
		coord.Type = "exe"
	}
	if coord.Classifier == "" {
		classifier, err := c.host.PlatformClassifier()
		if err != nil {
			return "", err
		}
		coord.Classifier = classifier
	}

	paths, err := c.resolver.Resolve(ctx, []codegen.Coordinate{coord}, codegen.DepthDirect, nil)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoArtifact, coord)
	}

	dir, err := c.space.Dir("plugins", "coordinate", id)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(paths[0]))
	if err := copyFile(paths[0], dst); err != nil {
		return "", err
	}
	if err := c.host.MakeExecutable(dst); err != nil {
		return "", fmt.Errorf("failed to make %s executable: %w", dst, err)
	}
	return dst, nil
}

// resolvePath finds a native plugin on the local filesystem. An explicit
// path is used as-is; a name is looked up on PATH.
func (c *Catalog) resolvePath(d Descriptor) (string, error) {
	if d.Name != "" {
		return c.host.LookPath(d.Name)
	}

	info, err := os.Stat(d.Path)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotAFile, d.Path)
	}
	return d.Path, nil
}

// resolveURL downloads a native plugin into plugins/url/<id>
func (c *Catalog) resolveURL(ctx context.Context, id, src string) (string, error) {
	dir, err := c.space.Dir("plugins", "url", id)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(dir, fetch.FileName(src))
	if err := c.downloader.Download(ctx, src, dst); err != nil {
		return "", err
	}
	if err := c.host.MakeExecutable(dst); err != nil {
		return "", fmt.Errorf("failed to make %s executable: %w", dst, err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return scratch.CreateFrom(dst, in, 0o644)
}
