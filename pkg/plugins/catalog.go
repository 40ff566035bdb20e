package plugins

import (
	"context"
	"fmt"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/scratch"
	"github.com/platinummonkey/protogen/pkg/fetch"
	"github.com/platinummonkey/protogen/pkg/host"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/platinummonkey/protogen/pkg/plugins/jvm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent JVM plugin resolution
const DefaultWorkers = 4

// Launcher wraps a JVM plugin in an executable launcher
type Launcher interface {
	Build(ctx context.Context, p jvm.Plugin) (codegen.ResolvedPlugin, error)
}

// Config holds the collaborators of a Catalog
type Config struct {
	Resolver   codegen.ArtifactResolver
	Host       *host.System
	Space      *scratch.Space
	Downloader *fetch.Downloader
	// Launcher defaults to a jvm.Builder over Resolver, Host and Space
	Launcher Launcher
	Workers  int
	Metrics  *observability.Metrics
	Log      logrus.FieldLogger
}

// Catalog resolves plugin descriptors into executables protoc can spawn
type Catalog struct {
	resolver   codegen.ArtifactResolver
	host       *host.System
	space      *scratch.Space
	downloader *fetch.Downloader
	launcher   Launcher
	workers    int
	metrics    *observability.Metrics
	log        logrus.FieldLogger
}

// NewCatalog creates a catalog from cfg
func NewCatalog(cfg Config) *Catalog {
	log := cfg.Log
	if log == nil {
		log = observability.NopLogger()
	}
	if cfg.Host == nil {
		cfg.Host = host.Current("")
	}
	if cfg.Downloader == nil {
		cfg.Downloader = fetch.NewDownloader(log)
	}
	if cfg.Launcher == nil {
		cfg.Launcher = jvm.NewBuilder(cfg.Resolver, cfg.Host, cfg.Space, log)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	return &Catalog{
		resolver:   cfg.Resolver,
		host:       cfg.Host,
		space:      cfg.Space,
		downloader: cfg.Downloader,
		launcher:   cfg.Launcher,
		workers:    cfg.Workers,
		metrics:    cfg.Metrics,
		log:        log.WithField("component", "plugins"),
	}
}

// pending is a descriptor awaiting resolution
type pending struct {
	id         string
	descriptor Descriptor
}

// Resolve returns the resolved plugins of every kind, coordinate plugins
// first, then path, URL and JVM plugins, each in declaration order.
// Skipped descriptors are left out. A descriptor equal to one seen earlier
// in the run resolves to the same plugin and is not repeated. Any
// plugin that cannot be located fails the whole resolution.
func (c *Catalog) Resolve(ctx context.Context, ds Descriptors) ([]codegen.ResolvedPlugin, error) {
	seen := make(map[string]bool)
	var resolved []codegen.ResolvedPlugin

	for _, kind := range Kinds {
		var batch []pending
		for _, d := range ds.Of(kind) {
			if d.Skip {
				c.log.WithField("plugin", d.String()).Info("Skipping plugin")
				c.metrics.RecordPlugin(string(kind), true)
				continue
			}
			if err := d.Validate(); err != nil {
				return nil, err
			}

			id := d.ID()
			if seen[id] {
				c.log.WithField("plugin", d.String()).Debug("Plugin declared more than once, resolving it once")
				continue
			}
			seen[id] = true
			batch = append(batch, pending{id: id, descriptor: d})
		}

		var (
			out []codegen.ResolvedPlugin
			err error
		)
		if kind == KindJVM {
			out, err = c.resolveConcurrently(ctx, batch)
		} else {
			out, err = c.resolveSequentially(ctx, batch)
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, out...)
	}

	c.log.WithField("plugins", len(resolved)).Debug("Resolved plugins")
	return resolved, nil
}

func (c *Catalog) resolveSequentially(ctx context.Context, batch []pending) ([]codegen.ResolvedPlugin, error) {
	out := make([]codegen.ResolvedPlugin, 0, len(batch))
	for _, p := range batch {
		r, err := c.resolveOne(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// resolveConcurrently resolves a batch with at most c.workers in flight.
// Every plugin writes only into its own id directory.
func (c *Catalog) resolveConcurrently(ctx context.Context, batch []pending) ([]codegen.ResolvedPlugin, error) {
	out := make([]codegen.ResolvedPlugin, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, p := range batch {
		g.Go(func() error {
			r, err := c.resolveOne(gctx, p)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolveOne dispatches on the descriptor kind
func (c *Catalog) resolveOne(ctx context.Context, p pending) (codegen.ResolvedPlugin, error) {
	d := p.descriptor
	log := c.log.WithFields(logrus.Fields{"plugin": d.String(), "id": p.id})

	var (
		path string
		err  error
	)
	switch d.Kind {
	case KindCoordinate:
		path, err = c.resolveCoordinate(ctx, p.id, *d.Coordinate)
	case KindPath:
		path, err = c.resolvePath(d)
	case KindURL:
		path, err = c.resolveURL(ctx, p.id, d.URL)
	case KindJVM:
		r, err := c.launcher.Build(ctx, jvm.Plugin{
			ID:         p.id,
			Coordinate: *d.Coordinate,
			MainClass:  d.MainClass,
			Options:    d.Options,
			Order:      d.Order,
		})
		if err != nil {
			return codegen.ResolvedPlugin{}, err
		}
		c.metrics.RecordPlugin(string(d.Kind), false)
		log.WithField("path", r.Path).Info("Resolved plugin")
		return r, nil
	default:
		return codegen.ResolvedPlugin{}, &codegen.ConfigurationError{Input: d.String(), Reason: fmt.Sprintf("unknown plugin kind %q", d.Kind)}
	}
	if err != nil {
		return codegen.ResolvedPlugin{}, codegen.NewResolutionError(d.String(), err)
	}

	c.metrics.RecordPlugin(string(d.Kind), false)
	log.WithField("path", path).Info("Resolved plugin")

	return codegen.ResolvedPlugin{
		ID:      p.id,
		Path:    path,
		Options: d.Options,
		Order:   d.Order,
	}, nil
}
