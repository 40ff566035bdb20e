package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/scratch"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
)

// Catalog discovers .proto files beneath a set of roots
type Catalog struct {
	space  *scratch.Space
	filter Filter
	log    logrus.FieldLogger

	extracted *extractions
}

// extractions remembers which archives were already unpacked this run
type extractions struct {
	mu   sync.Mutex
	dirs map[string]string
}

// NewCatalog creates a catalog. Archive roots are extracted into space;
// with a nil space they are rejected.
func NewCatalog(space *scratch.Space, log logrus.FieldLogger) *Catalog {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Catalog{
		space:     space,
		log:       log.WithField("component", "sources"),
		extracted: &extractions{dirs: make(map[string]string)},
	}
}

// WithFilter returns a catalog sharing c's extraction state whose
// listings only hold files that pass f
func (c *Catalog) WithFilter(f Filter) *Catalog {
	return &Catalog{
		space:     c.space,
		filter:    f,
		log:       c.log,
		extracted: c.extracted,
	}
}

// Build returns one listing per root that exists and holds at least one
// .proto file, in root order. Missing roots are skipped. A root that
// exists but cannot be read is an error.
func (c *Catalog) Build(ctx context.Context, roots []string) ([]codegen.ProtoFileListing, error) {
	var listings []codegen.ProtoFileListing

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root = filepath.Clean(root)
		info, err := os.Stat(root)
		if errors.Is(err, fs.ErrNotExist) {
			c.log.WithField("root", root).Debug("Skipping missing proto root")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read proto root %s: %w", root, err)
		}

		dir := root
		if !info.IsDir() {
			dir, err = c.extractRoot(root)
			if err != nil {
				return nil, err
			}
		}

		listing, err := c.list(dir)
		if err != nil {
			return nil, err
		}
		if len(listing.Files) == 0 {
			c.log.WithField("root", root).Debug("Proto root holds no matching files")
			continue
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

// list walks dir in lexical order. WalkDir does not descend into a
// symlinked root, so the link is resolved first and files are reported
// under dir as given.
func (c *Catalog) list(dir string) (codegen.ProtoFileListing, error) {
	listing := codegen.ProtoFileListing{Root: dir}

	walkRoot, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return codegen.ProtoFileListing{}, fmt.Errorf("failed to resolve proto root %s: %w", dir, err)
	}

	err = filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isProto(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, p)
		if err != nil {
			return err
		}
		if !c.filter.Match(filepath.ToSlash(rel)) {
			return nil
		}

		listing.Files = append(listing.Files, filepath.Join(dir, rel))
		return nil
	})
	if err != nil {
		return codegen.ProtoFileListing{}, fmt.Errorf("failed to list proto root %s: %w", dir, err)
	}

	return listing, nil
}

// extractRoot unpacks an archive root once per run and returns the directory
func (c *Catalog) extractRoot(root string) (string, error) {
	kind := kindOf(root)
	if kind == notArchive {
		return "", &codegen.ConfigurationError{Input: root, Reason: "proto root is neither a directory nor a .zip, .jar or .tar.gz archive"}
	}
	if c.space == nil {
		return "", &codegen.ConfigurationError{Input: root, Reason: "archive roots need a scratch space"}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	c.extracted.mu.Lock()
	defer c.extracted.mu.Unlock()

	if dir, ok := c.extracted.dirs[abs]; ok {
		return dir, nil
	}

	sum := sha256.Sum256([]byte(abs))
	dir, err := c.space.Dir("sources", hex.EncodeToString(sum[:]))
	if err != nil {
		return "", err
	}

	n, err := extract(abs, dir, kind)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", root, err)
	}
	c.log.WithFields(logrus.Fields{"archive": root, "files": n}).Debug("Extracted proto archive")

	c.extracted.dirs[abs] = dir
	return dir, nil
}

// Merge concatenates collections in the given order. A listing whose root
// already appeared, relative or absolute, is dropped; the first spelling
// is kept. Files under different roots are never compared.
func Merge(collections ...[]codegen.ProtoFileListing) []codegen.ProtoFileListing {
	seen := make(map[string]bool)
	var merged []codegen.ProtoFileListing

	for _, collection := range collections {
		for _, l := range collection {
			key := rootKey(l.Root)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, l)
		}
	}

	return merged
}

func rootKey(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Clean(root)
	}
	return abs
}
