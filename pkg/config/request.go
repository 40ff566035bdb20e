package config

import (
	"fmt"
	"os"
	"path/filepath"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/orchestrator"
	"github.com/platinummonkey/protogen/pkg/plugins"
	"gopkg.in/yaml.v3"
)

// DefaultRequestFile is the request file looked up when none is given
const DefaultRequestFile = "protogen.yaml"

// requestFile is the on-disk form of a generation request
type requestFile struct {
	SourceRoots []string `yaml:"sourceRoots"`
	ImportPaths []string `yaml:"importPaths"`

	ImportDependencies        []coordinate `yaml:"importDependencies"`
	SourceDependencies        []coordinate `yaml:"sourceDependencies"`
	ProjectDependencies       []coordinate `yaml:"projectDependencies"`
	IgnoreProjectDependencies bool         `yaml:"ignoreProjectDependencies"`
	DependencyResolutionDepth string       `yaml:"dependencyResolutionDepth"`

	Plugins pluginsFile `yaml:"plugins"`

	ProtocVersion string `yaml:"protocVersion"`

	Languages            []string `yaml:"languages"`
	LiteEnabled          bool     `yaml:"liteEnabled"`
	FatalWarnings        bool     `yaml:"fatalWarnings"`
	FailOnMissingSources bool     `yaml:"failOnMissingSources"`

	OutputDirectory           string `yaml:"outputDirectory"`
	RegisterAsCompilationRoot bool   `yaml:"registerAsCompilationRoot"`

	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

type pluginsFile struct {
	Coordinate []pluginEntry `yaml:"coordinate"`
	Path       []pluginEntry `yaml:"path"`
	URL        []pluginEntry `yaml:"url"`
	JVM        []pluginEntry `yaml:"jvm"`
}

type pluginEntry struct {
	Coordinate *coordinate `yaml:"coordinate"`
	Name       string      `yaml:"name"`
	Path       string      `yaml:"path"`
	URL        string      `yaml:"url"`
	MainClass  string      `yaml:"mainClass"`
	Options    []string    `yaml:"options"`
	Order      int         `yaml:"order"`
	Skip       bool        `yaml:"skip"`
}

// coordinate accepts either "group:artifact:version[:type[:classifier]]"
// or a mapping with groupId, artifactId and so on
type coordinate struct {
	codegen.Coordinate
}

func (c *coordinate) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := codegen.ParseCoordinate(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		c.Coordinate = parsed
		return nil
	case yaml.MappingNode:
		var m codegen.Coordinate
		if err := node.Decode(&m); err != nil {
			return err
		}
		c.Coordinate = m
		return nil
	default:
		return fmt.Errorf("line %d: coordinate must be a string or a mapping", node.Line)
	}
}

// LoadRequest reads a generation request from a YAML file. Relative paths
// in the file are resolved against the file's directory.
func LoadRequest(path string) (*orchestrator.GenerationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve request file path: %w", err)
	}

	req, err := ParseRequest(data, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// ParseRequest decodes a YAML generation request. Relative paths are
// resolved against baseDir.
func ParseRequest(data []byte, baseDir string) (*orchestrator.GenerationRequest, error) {
	var f requestFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &codegen.ConfigurationError{Input: "request", Reason: err.Error()}
	}

	var errs *multierror.Error

	req := &orchestrator.GenerationRequest{
		SourceRoots:               resolvePaths(baseDir, f.SourceRoots),
		ImportPaths:               resolvePaths(baseDir, f.ImportPaths),
		ImportDependencies:        coordinates(f.ImportDependencies),
		SourceDependencies:        coordinates(f.SourceDependencies),
		ProjectDependencies:       coordinates(f.ProjectDependencies),
		IgnoreProjectDependencies: f.IgnoreProjectDependencies,
		DependencyResolutionDepth: codegen.DependencyResolutionDepth(f.DependencyResolutionDepth),
		ProtocVersion:             f.ProtocVersion,
		Languages:                 codegen.NewLanguageSet(),
		LiteEnabled:               f.LiteEnabled,
		FatalWarnings:             f.FatalWarnings,
		FailOnMissingSources:      f.FailOnMissingSources,
		RegisterAsCompilationRoot: f.RegisterAsCompilationRoot,
		Includes:                  f.Includes,
		Excludes:                  f.Excludes,
	}
	if f.OutputDirectory != "" {
		req.OutputDirectory = resolvePath(baseDir, f.OutputDirectory)
	}

	for _, name := range f.Languages {
		lang, err := codegen.ParseLanguage(name)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		req.Languages[lang] = true
	}

	req.Plugins = plugins.Descriptors{
		Coordinate: descriptors(baseDir, f.Plugins.Coordinate),
		Path:       descriptors(baseDir, f.Plugins.Path),
		URL:        descriptors(baseDir, f.Plugins.URL),
		JVM:        descriptors(baseDir, f.Plugins.JVM),
	}
	for _, d := range req.Plugins.All() {
		if err := d.Validate(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if err := req.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return req, nil
}

func coordinates(in []coordinate) []codegen.Coordinate {
	if len(in) == 0 {
		return nil
	}
	out := make([]codegen.Coordinate, len(in))
	for i, c := range in {
		out[i] = c.Coordinate
	}
	return out
}

func descriptors(baseDir string, in []pluginEntry) []plugins.Descriptor {
	if len(in) == 0 {
		return nil
	}
	out := make([]plugins.Descriptor, len(in))
	for i, e := range in {
		d := plugins.Descriptor{
			Name:      e.Name,
			URL:       e.URL,
			MainClass: e.MainClass,
			Options:   e.Options,
			Order:     e.Order,
			Skip:      e.Skip,
		}
		if e.Coordinate != nil {
			c := e.Coordinate.Coordinate
			d.Coordinate = &c
		}
		if e.Path != "" {
			d.Path = resolvePath(baseDir, e.Path)
		}
		out[i] = d
	}
	return out
}

func resolvePaths(baseDir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolvePath(baseDir, p)
	}
	return out
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
