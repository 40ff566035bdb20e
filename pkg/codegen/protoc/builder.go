package protoc

import (
	"sort"

	"github.com/platinummonkey/protogen/pkg/codegen"
)

// Builder assembles a protoc invocation. Flags are always emitted in the
// same order regardless of the order the setters are called in:
//
//	protoc [--fatal_warnings] [--<lang>_out=...]... [-I<root>]...
//	       [--plugin=... --<id>_out=... [--<id>_opt=...]...]... <source>...
type Builder struct {
	compiler      string
	fatalWarnings bool
	languages     []codegen.Language
	lite          bool
	outputDir     string
	importRoots   []string
	plugins       []codegen.ResolvedPlugin
	sources       []string
}

// NewBuilder starts an invocation of compiler writing into outputDir
func NewBuilder(compiler, outputDir string) *Builder {
	return &Builder{compiler: compiler, outputDir: outputDir}
}

// FatalWarnings makes protoc treat warnings as errors
func (b *Builder) FatalWarnings(enabled bool) *Builder {
	b.fatalWarnings = enabled
	return b
}

// Languages enables the built-in generators in set, using the lite
// runtime variant when lite is set
func (b *Builder) Languages(set codegen.LanguageSet, lite bool) *Builder {
	b.languages = set.Ordered()
	b.lite = lite
	return b
}

// ImportRoots adds -I roots. Duplicates of roots already added are dropped.
func (b *Builder) ImportRoots(roots ...string) *Builder {
	b.importRoots = append(b.importRoots, roots...)
	return b
}

// ImportListings adds the root of every listing as an import root
func (b *Builder) ImportListings(listings []codegen.ProtoFileListing) *Builder {
	for _, l := range listings {
		b.importRoots = append(b.importRoots, l.Root)
	}
	return b
}

// Plugins adds resolved plugins. They are emitted by Order, ties keeping
// the order they were added in.
func (b *Builder) Plugins(plugins []codegen.ResolvedPlugin) *Builder {
	b.plugins = append(b.plugins, plugins...)
	return b
}

// Sources adds every file of the listings as a file to compile
func (b *Builder) Sources(listings []codegen.ProtoFileListing) *Builder {
	for _, l := range listings {
		b.sources = append(b.sources, l.Files...)
	}
	return b
}

// Build returns the invocation. Every flag precedes every source file.
func (b *Builder) Build() Invocation {
	args := []string{b.compiler}

	if b.fatalWarnings {
		args = append(args, "--fatal_warnings")
	}

	prefix := ""
	if b.lite {
		prefix = "lite:"
	}
	for _, l := range b.languages {
		args = append(args, l.OutFlag()+"="+prefix+b.outputDir)
	}

	for _, root := range distinct(b.importRoots) {
		args = append(args, "-I"+root)
	}

	plugins := append([]codegen.ResolvedPlugin(nil), b.plugins...)
	sort.SliceStable(plugins, func(i, j int) bool {
		return plugins[i].Order < plugins[j].Order
	})
	for _, p := range plugins {
		args = append(args,
			"--plugin=protoc-gen-"+p.ID+"="+p.Path,
			"--"+p.ID+"_out="+b.outputDir,
		)
		for _, opt := range p.Options {
			args = append(args, "--"+p.ID+"_opt="+opt)
		}
	}

	args = append(args, distinct(b.sources)...)

	return Invocation{args: args}
}

// Version is the invocation that prints the compiler version. It doubles
// as a check that the compiler can run at all.
func Version(compiler string) Invocation {
	return NewInvocation(compiler, "--version")
}

// distinct drops repeated values, keeping first occurrences in order
func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
