package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/protoc"
	"github.com/platinummonkey/protogen/pkg/codegen/scratch"
	"github.com/platinummonkey/protogen/pkg/codegen/sources"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/platinummonkey/protogen/pkg/plugins"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompiler struct {
	path      string
	err       error
	requested []string
}

func (f *fakeCompiler) Resolve(_ context.Context, version string) (string, error) {
	f.requested = append(f.requested, version)
	return f.path, f.err
}

type fakePlugins struct {
	resolved []codegen.ResolvedPlugin
	err      error
	calls    int
}

func (f *fakePlugins) Resolve(context.Context, plugins.Descriptors) ([]codegen.ResolvedPlugin, error) {
	f.calls++
	return f.resolved, f.err
}

type fakeArtifacts struct {
	paths map[string]string
	calls [][]codegen.Coordinate
}

func (f *fakeArtifacts) Resolve(_ context.Context, coords []codegen.Coordinate, _ codegen.DependencyResolutionDepth, _ []string) ([]string, error) {
	f.calls = append(f.calls, coords)
	var out []string
	for _, c := range coords {
		p, ok := f.paths[c.String()]
		if !ok {
			return nil, codegen.NewResolutionError(c.String(), errors.New("not found"))
		}
		out = append(out, p)
	}
	return out, nil
}

// fakeExecutor answers the version probe with probe and the real
// invocation with compile
type fakeExecutor struct {
	probe      bool
	probeErr   error
	compile    bool
	compileErr error
	calls      []protoc.Invocation
}

func (f *fakeExecutor) Execute(_ context.Context, inv protoc.Invocation) (bool, error) {
	f.calls = append(f.calls, inv)
	args := inv.Args()
	if len(args) == 2 && args[1] == "--version" {
		return f.probe, f.probeErr
	}
	return f.compile, f.compileErr
}

type harness struct {
	compiler   *fakeCompiler
	plugins    *fakePlugins
	artifacts  *fakeArtifacts
	executor   *fakeExecutor
	metrics    *observability.Metrics
	generator  *Generator
	registered []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	space, err := scratch.New(t.TempDir())
	require.NoError(t, err)

	h := &harness{
		compiler:  &fakeCompiler{path: "protoc"},
		plugins:   &fakePlugins{},
		artifacts: &fakeArtifacts{paths: map[string]string{}},
		executor:  &fakeExecutor{probe: true, compile: true},
		metrics:   observability.NewMetrics(),
	}
	h.generator, err = NewGenerator(Config{
		Artifacts: h.artifacts,
		Compiler:  h.compiler,
		Plugins:   h.plugins,
		Listings:  sources.NewCatalog(space, nil),
		Executor:  h.executor,
		Registrar: codegen.SourceRootRegistrarFunc(func(dir string) error {
			h.registered = append(h.registered, dir)
			return nil
		}),
		Metrics: h.metrics,
	})
	require.NoError(t, err)
	return h
}

func writeProto(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`syntax = "proto3";`), 0o644))
}

func TestGenerate_SingleSourceRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	writeProto(t, filepath.Join("proto", "a.proto"))
	h := newHarness(t)

	result, err := h.generator.Generate(context.Background(), &GenerationRequest{
		SourceRoots:     []string{"proto"},
		Languages:       codegen.NewLanguageSet(codegen.LanguageJava),
		OutputDirectory: "out",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, result.Status)
	assert.True(t, result.Success())
	assert.Equal(t, 1, result.SourceCount)
	assert.Equal(t, []string{"protoc", "--java_out=out", "-Iproto", filepath.Join("proto", "a.proto")}, result.Invocation.Args())
	assert.DirExists(t, "out")

	require.Len(t, h.executor.calls, 2)
	assert.Equal(t, []string{"protoc", "--version"}, h.executor.calls[0].Args())
	assert.Equal(t, result.Invocation.Args(), h.executor.calls[1].Args())
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.GenerationsTotal.WithLabelValues(string(StatusSucceeded))))
}

func TestGenerate_EmptySources(t *testing.T) {
	tests := []struct {
		name   string
		fail   bool
		status Status
		ok     bool
	}{
		{"skip", false, StatusSkippedEmpty, true},
		{"fail", true, StatusFailedEmpty, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			out := filepath.Join(dir, "out")
			h := newHarness(t)

			result, err := h.generator.Generate(context.Background(), &GenerationRequest{
				SourceRoots:          []string{filepath.Join(dir, "missing"), dir},
				Languages:            codegen.NewLanguageSet(codegen.LanguageJava),
				OutputDirectory:      out,
				FailOnMissingSources: tt.fail,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.ok, result.Success())
			assert.Empty(t, h.executor.calls)
			assert.NoDirExists(t, out)
		})
	}
}

func TestGenerate_CompilerUnavailable(t *testing.T) {
	dir := t.TempDir()
	writeProto(t, filepath.Join(dir, "a.proto"))
	h := newHarness(t)
	h.executor.probe = false

	result, err := h.generator.Generate(context.Background(), &GenerationRequest{
		SourceRoots:     []string{dir},
		OutputDirectory: filepath.Join(dir, "out"),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusCompilerUnavailable, result.Status)
	assert.False(t, result.Success())
	require.Len(t, h.executor.calls, 1, "the real invocation must not run")
}

func TestGenerate_ProbeExecutorError(t *testing.T) {
	dir := t.TempDir()
	writeProto(t, filepath.Join(dir, "a.proto"))
	h := newHarness(t)
	h.executor.probeErr = errors.New("exec format error")

	result, err := h.generator.Generate(context.Background(), &GenerationRequest{
		SourceRoots:     []string{dir},
		OutputDirectory: filepath.Join(dir, "out"),
	})

	assert.ErrorContains(t, err, "exec format error")
	assert.Nil(t, result)
	require.Len(t, h.executor.calls, 1, "the real invocation must not run")
}

func TestGenerate_CompilerFailed(t *testing.T) {
	dir := t.TempDir()
	writeProto(t, filepath.Join(dir, "a.proto"))
	h := newHarness(t)
	h.executor.compile = false

	result, err := h.generator.Generate(context.Background(), &GenerationRequest{
		SourceRoots:     []string{dir},
		OutputDirectory: filepath.Join(dir, "out"),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusCompilerFailed, result.Status)
	assert.False(t, result.Success())
}

func TestGenerate_ExecutorError(t *testing.T) {
	dir := t.TempDir()
	writeProto(t, filepath.Join(dir, "a.proto"))
	h := newHarness(t)
	h.executor.compileErr = errors.New("fork failed")

	_, err := h.generator.Generate(context.Background(), &GenerationRequest{
		SourceRoots:     []string{dir},
		OutputDirectory: filepath.Join(dir, "out"),
	})

	assert.Error(t, err)
}

func TestGenerate_ResolutionFailures(t *testing.T) {
	cause := codegen.NewResolutionError("protoc", errors.New("not on PATH"))

	t.Run("compiler", func(t *testing.T) {
		h := newHarness(t)
		h.compiler.err = cause

		_, err := h.generator.Generate(context.Background(), &GenerationRequest{OutputDirectory: t.TempDir()})

		assert.ErrorIs(t, err, cause)
		assert.Zero(t, h.plugins.calls)
	})

	t.Run("plugins", func(t *testing.T) {
		h := newHarness(t)
		h.plugins.err = cause

		_, err := h.generator.Generate(context.Background(), &GenerationRequest{OutputDirectory: t.TempDir()})

		assert.ErrorIs(t, err, cause)
		assert.True(t, errors.Is(err, codegen.ErrResolution))
	})

	t.Run("dependency", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.generator.Generate(context.Background(), &GenerationRequest{
			ImportDependencies: []codegen.Coordinate{{GroupID: "g", ArtifactID: "a", Version: "1"}},
			OutputDirectory:    t.TempDir(),
		})

		assert.True(t, errors.Is(err, codegen.ErrResolution))
		assert.Empty(t, h.executor.calls)
	})
}

func TestGenerate_ImportCategoriesAndPlugins(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	importDep := filepath.Join(dir, "import-dep")
	importPath := filepath.Join(dir, "import-path")
	sourceDep := filepath.Join(dir, "source-dep")
	projectDep := filepath.Join(dir, "project-dep")
	for _, root := range []string{src, importDep, importPath, sourceDep, projectDep} {
		writeProto(t, filepath.Join(root, "x.proto"))
	}
	out := filepath.Join(dir, "out")

	h := newHarness(t)
	h.artifacts.paths = map[string]string{
		"g:import:1":  importDep,
		"g:source:1":  sourceDep,
		"g:project:1": projectDep,
	}
	h.plugins.resolved = []codegen.ResolvedPlugin{{ID: "abc", Path: "/bin/plugin", Options: []string{"opt"}}}

	req := &GenerationRequest{
		SourceRoots:               []string{src},
		ImportPaths:               []string{importPath},
		ImportDependencies:        []codegen.Coordinate{{GroupID: "g", ArtifactID: "import", Version: "1"}},
		SourceDependencies:        []codegen.Coordinate{{GroupID: "g", ArtifactID: "source", Version: "1"}},
		ProjectDependencies:       []codegen.Coordinate{{GroupID: "g", ArtifactID: "project", Version: "1"}},
		DependencyResolutionDepth: codegen.DepthDirect,
		FatalWarnings:             true,
		OutputDirectory:           out,
		RegisterAsCompilationRoot: true,
	}

	result, err := h.generator.Generate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"protoc",
		"--fatal_warnings",
		"-I" + importDep,
		"-I" + importPath,
		"-I" + sourceDep,
		"-I" + projectDep,
		"-I" + src,
		"--plugin=protoc-gen-abc=/bin/plugin",
		"--abc_out=" + out,
		"--abc_opt=opt",
		filepath.Join(src, "x.proto"),
		filepath.Join(sourceDep, "x.proto"),
	}, result.Invocation.Args())
	assert.Equal(t, 2, result.SourceCount)
	assert.Equal(t, []string{out}, h.registered)
}

func TestGenerate_IgnoreProjectDependencies(t *testing.T) {
	dir := t.TempDir()
	writeProto(t, filepath.Join(dir, "a.proto"))
	h := newHarness(t)

	_, err := h.generator.Generate(context.Background(), &GenerationRequest{
		SourceRoots:               []string{dir},
		ProjectDependencies:       []codegen.Coordinate{{GroupID: "g", ArtifactID: "unresolvable", Version: "1"}},
		IgnoreProjectDependencies: true,
		OutputDirectory:           filepath.Join(dir, "out"),
	})

	require.NoError(t, err)
	assert.Empty(t, h.artifacts.calls)
}

func TestGenerate_Filters(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeProto(t, filepath.Join(src, "api", "v1", "a.proto"))
	writeProto(t, filepath.Join(src, "internal", "b.proto"))
	h := newHarness(t)

	result, err := h.generator.Generate(context.Background(), &GenerationRequest{
		SourceRoots:     []string{src},
		Excludes:        []string{"internal/**"},
		OutputDirectory: filepath.Join(dir, "out"),
	})

	require.NoError(t, err)
	args := result.Invocation.Args()
	assert.Equal(t, filepath.Join(src, "api", "v1", "a.proto"), args[len(args)-1])
	assert.NotContains(t, args, filepath.Join(src, "internal", "b.proto"))
}

func TestGenerate_Deterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.proto", "a.proto", "sub/b.proto"} {
		writeProto(t, filepath.Join(dir, name))
	}

	var first []string
	for i := 0; i < 5; i++ {
		h := newHarness(t)
		result, err := h.generator.Generate(context.Background(), &GenerationRequest{
			SourceRoots:     []string{dir},
			Languages:       codegen.NewLanguageSet(codegen.LanguageCPP, codegen.LanguagePython),
			OutputDirectory: filepath.Join(dir, "out"),
		})
		require.NoError(t, err)
		if first == nil {
			first = result.Invocation.Args()
			continue
		}
		assert.Equal(t, first, result.Invocation.Args())
	}
}

func TestGenerate_InvalidRequest(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		req  *GenerationRequest
	}{
		{"no output", &GenerationRequest{}},
		{"bad depth", &GenerationRequest{OutputDirectory: "out", DependencyResolutionDepth: "DEEP"}},
		{"bad coordinate", &GenerationRequest{OutputDirectory: "out", SourceDependencies: []codegen.Coordinate{{GroupID: "g"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.generator.Generate(context.Background(), tt.req)
			assert.True(t, errors.Is(err, codegen.ErrConfiguration), "got %v", err)
		})
	}

	_, err := h.generator.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilRequest)
}

func TestNewGenerator_MissingCollaborators(t *testing.T) {
	_, err := NewGenerator(Config{})

	assert.ErrorIs(t, err, ErrMissingCollaborator)
}

func TestGenerationRequest_Depth(t *testing.T) {
	assert.Equal(t, codegen.DepthTransitive, (&GenerationRequest{}).Depth())
	assert.Equal(t, codegen.DepthDirect, (&GenerationRequest{DependencyResolutionDepth: codegen.DepthDirect}).Depth())
}
