package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/protoc"
	"github.com/platinummonkey/protogen/pkg/codegen/sources"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage names used for spans and metrics
const (
	StageCompiler = "resolve_compiler"
	StagePlugins  = "resolve_plugins"
	StageImports  = "resolve_imports"
	StageSources  = "resolve_sources"
	StageProbe    = "probe_compiler"
	StageCompile  = "compile"
)

// Config holds the collaborators of a Generator
type Config struct {
	// Artifacts resolves dependency coordinates. It may be nil when no
	// request names any.
	Artifacts codegen.ArtifactResolver
	Compiler  CompilerResolver
	Plugins   PluginResolver
	Listings  *sources.Catalog
	Executor  Executor
	// Registrar is told about the output directory when the request asks
	// for it to be registered as a compilation root
	Registrar codegen.SourceRootRegistrar
	Metrics   *observability.Metrics
	Log       logrus.FieldLogger
}

// Generator runs generation requests
type Generator struct {
	artifacts codegen.ArtifactResolver
	compiler  CompilerResolver
	plugins   PluginResolver
	listings  *sources.Catalog
	executor  Executor
	registrar codegen.SourceRootRegistrar
	metrics   *observability.Metrics
	log       logrus.FieldLogger
}

// NewGenerator creates a generator. Compiler, Plugins, Listings and
// Executor are required.
func NewGenerator(cfg Config) (*Generator, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"compiler resolver", cfg.Compiler == nil},
		{"plugin resolver", cfg.Plugins == nil},
		{"listings", cfg.Listings == nil},
		{"executor", cfg.Executor == nil},
	}
	for _, r := range required {
		if r.missing {
			return nil, fmt.Errorf("%w: %s", ErrMissingCollaborator, r.name)
		}
	}

	log := cfg.Log
	if log == nil {
		log = observability.NopLogger()
	}

	return &Generator{
		artifacts: cfg.Artifacts,
		compiler:  cfg.Compiler,
		plugins:   cfg.Plugins,
		listings:  cfg.Listings,
		executor:  cfg.Executor,
		registrar: cfg.Registrar,
		metrics:   cfg.Metrics,
		log:       log.WithField("component", "generator"),
	}, nil
}

// Generate runs req through every stage. Resolution and I/O failures are
// returned as errors; a compiler that is unavailable or rejects the input
// is reported through Result.Status.
func (g *Generator) Generate(ctx context.Context, req *GenerationRequest) (*Result, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	ctx, span := observability.Tracer().Start(ctx, "protogen.generate")
	defer span.End()
	log := observability.WithTraceContext(ctx, g.log)

	start := time.Now()
	result, err := g.generate(ctx, log, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.metrics.RecordGeneration("error")
		return nil, err
	}

	result.Duration = time.Since(start)
	span.SetAttributes(
		attribute.String("protogen.status", string(result.Status)),
		attribute.Int("protogen.sources", result.SourceCount),
		attribute.Int("protogen.plugins", len(result.Plugins)),
	)
	if !result.Success() {
		span.SetStatus(codes.Error, string(result.Status))
	}
	g.metrics.RecordGeneration(string(result.Status))

	log.WithFields(logrus.Fields{
		"status":   result.Status,
		"duration": result.Duration,
	}).Debug("Generation finished")
	return result, nil
}

func (g *Generator) generate(ctx context.Context, log logrus.FieldLogger, req *GenerationRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	err := g.stage(ctx, StageCompiler, func(ctx context.Context) error {
		path, err := g.compiler.Resolve(ctx, req.ProtocVersion)
		result.Compiler = path
		return err
	})
	if err != nil {
		return nil, err
	}

	err = g.stage(ctx, StagePlugins, func(ctx context.Context) error {
		resolved, err := g.plugins.Resolve(ctx, req.Plugins)
		result.Plugins = resolved
		return err
	})
	if err != nil {
		return nil, err
	}

	var imports, sourceDeps []codegen.ProtoFileListing
	err = g.stage(ctx, StageImports, func(ctx context.Context) error {
		var err error
		imports, sourceDeps, err = g.discoverImports(ctx, log, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	var compilable []codegen.ProtoFileListing
	err = g.stage(ctx, StageSources, func(ctx context.Context) error {
		var err error
		compilable, err = g.discoverSources(ctx, req, sourceDeps)
		return err
	})
	if err != nil {
		return nil, err
	}

	result.SourceCount = countFiles(compilable)
	g.metrics.SetSourceFiles(result.SourceCount)

	if result.SourceCount == 0 {
		if req.FailOnMissingSources {
			log.Error("No protobuf sources found. If this is unexpected, check your configuration and try again.")
			result.Status = StatusFailedEmpty
		} else {
			log.Info("No protobuf sources found; nothing to do")
			result.Status = StatusSkippedEmpty
		}
		return result, nil
	}
	log.WithField("files", result.SourceCount).Info("Generating code")

	if err := g.prepareOutput(log, req); err != nil {
		return nil, err
	}

	result.Invocation = protoc.NewBuilder(result.Compiler, req.OutputDir()).
		FatalWarnings(req.FatalWarnings).
		Languages(req.Languages, req.LiteEnabled).
		ImportListings(imports).
		ImportListings(compilable).
		Plugins(result.Plugins).
		Sources(compilable).
		Build()

	var available bool
	err = g.stage(ctx, StageProbe, func(ctx context.Context) error {
		ok, err := g.executor.Execute(ctx, protoc.Version(result.Compiler))
		if err != nil {
			return err
		}
		g.metrics.RecordCompilerExecution("version", ok)
		available = ok
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !available {
		log.WithField("compiler", result.Compiler).
			Error("Unable to execute protoc. Ensure the binary is compatible with this platform")
		result.Status = StatusCompilerUnavailable
		return result, nil
	}

	var succeeded bool
	err = g.stage(ctx, StageCompile, func(ctx context.Context) error {
		log.WithField("command", result.Invocation.String()).Debug("Invoking protoc")
		ok, err := g.executor.Execute(ctx, result.Invocation)
		if err != nil {
			return err
		}
		g.metrics.RecordCompilerExecution("generate", ok)
		succeeded = ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	if succeeded {
		result.Status = StatusSucceeded
	} else {
		log.Error("protoc rejected the input")
		result.Status = StatusCompilerFailed
	}
	return result, nil
}

// discoverImports returns the merged import listings and, separately, the
// source dependency listings so they can be compiled as well
func (g *Generator) discoverImports(ctx context.Context, log logrus.FieldLogger, req *GenerationRequest) ([]codegen.ProtoFileListing, []codegen.ProtoFileListing, error) {
	importDeps, err := g.dependencyListings(ctx, g.listings, req.ImportDependencies, req.Depth())
	if err != nil {
		return nil, nil, err
	}

	importPaths, err := g.listings.Build(ctx, req.ImportPaths)
	if err != nil {
		return nil, nil, err
	}

	sourceDeps, err := g.dependencyListings(ctx, g.listings, req.SourceDependencies, req.Depth())
	if err != nil {
		return nil, nil, err
	}

	var projectDeps []codegen.ProtoFileListing
	if req.IgnoreProjectDependencies {
		log.Debug("Ignoring project dependencies")
	} else {
		projectDeps, err = g.dependencyListings(ctx, g.listings, req.ProjectDependencies, req.Depth())
		if err != nil {
			return nil, nil, err
		}
	}

	imports := sources.Merge(importDeps, importPaths, sourceDeps, projectDeps)
	log.WithField("roots", len(imports)).Debug("Discovered import roots")
	return imports, sourceDeps, nil
}

// discoverSources lists the compilable files of the source roots and source
// dependencies, filtered by the request globs
func (g *Generator) discoverSources(ctx context.Context, req *GenerationRequest, sourceDeps []codegen.ProtoFileListing) ([]codegen.ProtoFileListing, error) {
	catalog := g.listings
	if len(req.Includes) > 0 || len(req.Excludes) > 0 {
		filter, err := sources.NewFilter(req.Includes, req.Excludes)
		if err != nil {
			return nil, err
		}
		catalog = g.listings.WithFilter(filter)
	}

	roots, err := catalog.Build(ctx, req.SourceRoots)
	if err != nil {
		return nil, err
	}

	if catalog != g.listings {
		deps := make([]string, 0, len(sourceDeps))
		for _, l := range sourceDeps {
			deps = append(deps, l.Root)
		}
		sourceDeps, err = catalog.Build(ctx, deps)
		if err != nil {
			return nil, err
		}
	}

	return sources.Merge(roots, sourceDeps), nil
}

func (g *Generator) dependencyListings(ctx context.Context, catalog *sources.Catalog, coords []codegen.Coordinate, depth codegen.DependencyResolutionDepth) ([]codegen.ProtoFileListing, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	if g.artifacts == nil {
		return nil, &codegen.ConfigurationError{Input: coords[0].String(), Reason: "no artifact repository configured"}
	}

	paths, err := g.artifacts.Resolve(ctx, coords, depth, nil)
	if err != nil {
		return nil, err
	}
	return catalog.Build(ctx, paths)
}

func (g *Generator) prepareOutput(log logrus.FieldLogger, req *GenerationRequest) error {
	dir := req.OutputDir()
	log.WithField("dir", dir).Debug("Creating output directory")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	if !req.RegisterAsCompilationRoot || g.registrar == nil {
		log.WithField("dir", dir).Debug("Not registering output directory as a compilation root")
		return nil
	}
	log.WithField("dir", dir).Debug("Registering output directory as a compilation root")
	if err := g.registrar.RegisterSourceRoot(dir); err != nil {
		return fmt.Errorf("failed to register compilation root %s: %w", dir, err)
	}
	return nil
}

// stage runs fn inside a span and records its duration
func (g *Generator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.Tracer().Start(ctx, "protogen."+name, trace.WithAttributes(
		attribute.String("protogen.stage", name),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	g.metrics.RecordStage(name, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// countFiles counts distinct files across listings
func countFiles(listings []codegen.ProtoFileListing) int {
	seen := make(map[string]bool)
	for _, l := range listings {
		for _, f := range l.Files {
			seen[f] = true
		}
	}
	return len(seen)
}
