package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/fetch"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPOMCacheSize is the number of parsed POMs kept per resolver
	DefaultPOMCacheSize = 512

	// maxParentDepth bounds parent POM chains
	maxParentDepth = 32
)

// Config configures a Resolver
type Config struct {
	// LocalPath is the root of the local Maven-layout repository
	LocalPath string
	// RemoteURL is an optional go-getter source prefix used when an
	// artifact is missing locally. Fetched files are stored in LocalPath.
	RemoteURL string
	// POMCacheSize defaults to DefaultPOMCacheSize
	POMCacheSize int
}

// Resolver resolves coordinates against a Maven-layout repository
type Resolver struct {
	local      string
	remote     string
	downloader *fetch.Downloader
	poms       *lru.Cache[string, *pom]
	log        logrus.FieldLogger

	// fetchMu serializes remote downloads so concurrent resolutions of the
	// same artifact do not race on the destination file
	fetchMu sync.Mutex
}

// NewResolver creates a resolver over cfg.LocalPath
func NewResolver(cfg Config, downloader *fetch.Downloader, log logrus.FieldLogger) (*Resolver, error) {
	if cfg.LocalPath == "" {
		return nil, &codegen.ConfigurationError{Input: "local repository", Reason: "path is empty"}
	}
	if log == nil {
		log = observability.NopLogger()
	}
	if cfg.RemoteURL != "" && downloader == nil {
		downloader = fetch.NewDownloader(log)
	}

	size := cfg.POMCacheSize
	if size <= 0 {
		size = DefaultPOMCacheSize
	}
	cache, err := lru.New[string, *pom](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create POM cache: %w", err)
	}

	return &Resolver{
		local:      cfg.LocalPath,
		remote:     strings.TrimSuffix(cfg.RemoteURL, "/"),
		downloader: downloader,
		poms:       cache,
		log:        log.WithField("component", "repository"),
	}, nil
}

type node struct {
	coord      codegen.Coordinate
	scope      string
	systemPath string
	via        string
	// exclusions accumulated along the path from the requested coordinate
	exclusions []exclusion
}

// Resolve implements codegen.ArtifactResolver. Coordinates are visited
// breadth first, so when two versions of the same artifact are reachable
// the one nearest to the requested coordinates wins. Optional
// dependencies are never followed, nor are provided or test scoped
// dependencies of dependencies. Exclusions declared on a dependency apply
// to everything reachable through it.
func (r *Resolver) Resolve(ctx context.Context, coords []codegen.Coordinate, depth codegen.DependencyResolutionDepth, scopes []string) ([]string, error) {
	if !depth.Valid() {
		return nil, &codegen.ConfigurationError{Input: string(depth), Reason: "unknown dependency resolution depth"}
	}

	allowed := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		allowed[s] = true
	}

	queue := make([]node, 0, len(coords))
	for _, c := range coords {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		queue = append(queue, node{coord: c, scope: codegen.ScopeCompile})
	}

	seen := make(map[string]bool)
	var paths []string

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := queue[0]
		queue = queue[1:]

		key := versionlessKey(n.coord)
		if seen[key] {
			continue
		}
		seen[key] = true

		p, err := r.artifact(ctx, n)
		if err != nil {
			return nil, codegen.NewResolutionError(n.coord.String(), err)
		}
		paths = append(paths, p)

		if depth == codegen.DepthDirect || n.scope == codegen.ScopeSystem {
			continue
		}

		deps, err := r.dependencies(ctx, n.coord)
		if err != nil {
			return nil, codegen.NewResolutionError(n.coord.String(), err)
		}
		for _, d := range deps {
			if d.Optional || d.Scope == codegen.ScopeProvided || d.Scope == codegen.ScopeTest {
				continue
			}
			if len(allowed) > 0 && !allowed[d.Scope] {
				continue
			}
			if seen[versionlessKey(d.Coordinate)] {
				continue
			}
			if excluded(n.exclusions, d.Coordinate) {
				r.log.WithFields(logrus.Fields{
					"coordinate": d.Coordinate.String(),
					"via":        n.coord.String(),
				}).Debug("Skipping excluded dependency")
				continue
			}
			queue = append(queue, node{
				coord:      d.Coordinate,
				scope:      d.Scope,
				systemPath: d.SystemPath,
				via:        n.coord.String(),
				exclusions: appendExclusions(n.exclusions, d.Exclusions),
			})
		}
	}

	r.log.WithFields(logrus.Fields{
		"coordinates": len(coords),
		"depth":       depth,
		"artifacts":   len(paths),
	}).Debug("Resolved artifacts")

	return paths, nil
}

// appendExclusions returns inherited plus own without sharing inherited's
// backing array between siblings
func appendExclusions(inherited, own []exclusion) []exclusion {
	if len(own) == 0 {
		return inherited
	}
	out := make([]exclusion, 0, len(inherited)+len(own))
	out = append(out, inherited...)
	return append(out, own...)
}

// artifact returns the local path of the artifact behind n
func (r *Resolver) artifact(ctx context.Context, n node) (string, error) {
	if n.scope == codegen.ScopeSystem {
		if n.systemPath == "" {
			return "", fmt.Errorf("%w: system scoped dependency has no systemPath", ErrArtifactNotFound)
		}
		if _, err := os.Stat(n.systemPath); err != nil {
			return "", fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
		}
		return n.systemPath, nil
	}

	rel := ArtifactPath(n.coord)
	if err := r.ensure(ctx, rel); err != nil {
		if n.via != "" {
			return "", fmt.Errorf("required by %s: %w", n.via, err)
		}
		return "", err
	}
	return r.localPath(rel), nil
}

// dependencies returns the declared dependencies of c with the parent
// chain merged in. A missing POM means no dependencies.
func (r *Resolver) dependencies(ctx context.Context, c codegen.Coordinate) ([]dependency, error) {
	p, err := r.effectivePOM(ctx, c, 0)
	if errors.Is(err, ErrArtifactNotFound) {
		r.log.WithField("coordinate", c.String()).Warn("No POM found, assuming no dependencies")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.dependencies()
}

func (r *Resolver) effectivePOM(ctx context.Context, c codegen.Coordinate, depth int) (*pom, error) {
	if depth > maxParentDepth {
		return nil, fmt.Errorf("%w at %s", ErrParentCycle, c)
	}

	key := POMPath(c)
	if cached, ok := r.poms.Get(key); ok {
		return cached, nil
	}

	if err := r.ensure(ctx, key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.localPath(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read POM: %w", err)
	}
	p, err := parsePOM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c, err)
	}

	if p.Parent != nil {
		parent, err := r.effectivePOM(ctx, *p.Parent, depth+1)
		if err != nil {
			return nil, fmt.Errorf("parent of %s: %w", c, err)
		}
		p.inherit(parent)
	}

	r.poms.Add(key, p)
	return p, nil
}

// ensure makes rel available in the local repository, fetching it from
// the remote when one is configured
func (r *Resolver) ensure(ctx context.Context, rel string) error {
	local := r.localPath(rel)
	if _, err := os.Stat(local); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if r.remote == "" {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, local)
	}

	r.fetchMu.Lock()
	defer r.fetchMu.Unlock()

	// another resolution may have fetched it while we waited
	if _, err := os.Stat(local); err == nil {
		return nil
	}

	src := r.remote + "/" + rel
	r.log.WithField("source", src).Info("Fetching artifact from remote repository")
	if err := r.downloader.Download(ctx, src, local); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
	}
	return nil
}

func (r *Resolver) localPath(rel string) string {
	return filepath.Join(r.local, filepath.FromSlash(rel))
}

// versionlessKey identifies an artifact regardless of version for
// nearest-wins mediation
func versionlessKey(c codegen.Coordinate) string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.TypeOrDefault("jar") + ":" + c.Classifier
}
