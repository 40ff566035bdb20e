package orchestrator

import (
	"context"
	"path/filepath"
	"time"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/protoc"
	"github.com/platinummonkey/protogen/pkg/plugins"
)

// GenerationRequest describes one code generation run. It is not modified
// by the Generator.
type GenerationRequest struct {
	// SourceRoots hold the files to compile. Archives are extracted.
	SourceRoots []string
	// ImportPaths are directories or archives visible to imports only
	ImportPaths []string
	// ImportDependencies are artifacts whose proto files may be imported
	ImportDependencies []codegen.Coordinate
	// SourceDependencies are artifacts whose proto files are compiled
	SourceDependencies []codegen.Coordinate
	// ProjectDependencies are the dependencies of the enclosing project,
	// importable unless IgnoreProjectDependencies is set
	ProjectDependencies       []codegen.Coordinate
	IgnoreProjectDependencies bool
	DependencyResolutionDepth codegen.DependencyResolutionDepth

	Plugins plugins.Descriptors

	// ProtocVersion is "", PATH, a file path or a release version
	ProtocVersion string

	Languages            codegen.LanguageSet
	LiteEnabled          bool
	FatalWarnings        bool
	FailOnMissingSources bool

	OutputDirectory           string
	RegisterAsCompilationRoot bool

	// Includes and Excludes are doublestar globs matched against source
	// files relative to their root
	Includes []string
	Excludes []string
}

// Depth returns the resolution depth, TRANSITIVE when unset
func (r *GenerationRequest) Depth() codegen.DependencyResolutionDepth {
	if r.DependencyResolutionDepth == "" {
		return codegen.DepthTransitive
	}
	return r.DependencyResolutionDepth
}

// Validate checks the request for settings that can never work
func (r *GenerationRequest) Validate() error {
	if r.OutputDirectory == "" {
		return &codegen.ConfigurationError{Input: "outputDirectory", Reason: "is required"}
	}
	if !r.Depth().Valid() {
		return &codegen.ConfigurationError{
			Input:  string(r.DependencyResolutionDepth),
			Reason: "dependency resolution depth must be DIRECT or TRANSITIVE",
		}
	}
	groups := [][]codegen.Coordinate{r.ImportDependencies, r.SourceDependencies, r.ProjectDependencies}
	for _, group := range groups {
		for _, c := range group {
			if err := c.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// OutputDir is the cleaned output directory
func (r *GenerationRequest) OutputDir() string {
	return filepath.Clean(r.OutputDirectory)
}

// Status is the outcome of a run
type Status string

const (
	// StatusSucceeded means protoc ran and exited 0
	StatusSucceeded Status = "succeeded"
	// StatusSkippedEmpty means there was nothing to compile and that is allowed
	StatusSkippedEmpty Status = "skipped_empty"
	// StatusFailedEmpty means there was nothing to compile and that is an error
	StatusFailedEmpty Status = "failed_empty"
	// StatusCompilerUnavailable means protoc --version did not succeed
	StatusCompilerUnavailable Status = "compiler_unavailable"
	// StatusCompilerFailed means protoc ran and rejected the input
	StatusCompilerFailed Status = "compiler_failed"
)

// Result describes a finished run
type Result struct {
	Status      Status
	Compiler    string
	Invocation  protoc.Invocation
	Plugins     []codegen.ResolvedPlugin
	SourceCount int
	Duration    time.Duration
}

// Success reports whether the run counts as a success
func (r *Result) Success() bool {
	return r.Status == StatusSucceeded || r.Status == StatusSkippedEmpty
}

// Executor runs a compiler invocation. It returns true when the process
// exited 0 and an error only when it could not be attempted.
type Executor interface {
	Execute(ctx context.Context, inv protoc.Invocation) (bool, error)
}

// CompilerResolver locates protoc for a requested version
type CompilerResolver interface {
	Resolve(ctx context.Context, version string) (string, error)
}

// PluginResolver turns plugin descriptors into executables
type PluginResolver interface {
	Resolve(ctx context.Context, ds plugins.Descriptors) ([]codegen.ResolvedPlugin, error)
}
