package codegen

import (
	"context"
	"fmt"
	"strings"
)

// DependencyResolutionDepth controls how far dependency coordinates are followed
type DependencyResolutionDepth string

const (
	// DepthDirect resolves only the listed coordinates
	DepthDirect DependencyResolutionDepth = "DIRECT"
	// DepthTransitive resolves the listed coordinates and everything they depend on
	DepthTransitive DependencyResolutionDepth = "TRANSITIVE"
)

// Valid reports whether the depth is one of the known values
func (d DependencyResolutionDepth) Valid() bool {
	return d == DepthDirect || d == DepthTransitive
}

// Coordinate identifies an artifact in a repository
type Coordinate struct {
	GroupID    string `json:"groupId" yaml:"groupId"`
	ArtifactID string `json:"artifactId" yaml:"artifactId"`
	Version    string `json:"version" yaml:"version"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	Classifier string `json:"classifier,omitempty" yaml:"classifier,omitempty"`
}

// ParseCoordinate parses "group:artifact:version[:type[:classifier]]"
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 3 || len(parts) > 5 {
		return Coordinate{}, &ConfigurationError{
			Input:  s,
			Reason: "expected group:artifact:version[:type[:classifier]]",
		}
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, &ConfigurationError{Input: s, Reason: "coordinate has an empty segment"}
		}
	}

	c := Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}
	if len(parts) > 3 {
		c.Type = parts[3]
	}
	if len(parts) > 4 {
		c.Classifier = parts[4]
	}
	return c, nil
}

// String returns the textual coordinate form
func (c Coordinate) String() string {
	s := fmt.Sprintf("%s:%s:%s", c.GroupID, c.ArtifactID, c.Version)
	switch {
	case c.Classifier != "":
		s += ":" + c.TypeOrDefault("jar") + ":" + c.Classifier
	case c.Type != "":
		s += ":" + c.Type
	}
	return s
}

// TypeOrDefault returns the artifact type, or def when none is set
func (c Coordinate) TypeOrDefault(def string) string {
	if c.Type == "" {
		return def
	}
	return c.Type
}

// Validate checks that the mandatory parts of the coordinate are present
func (c Coordinate) Validate() error {
	var missing []string
	if c.GroupID == "" {
		missing = append(missing, "groupId")
	}
	if c.ArtifactID == "" {
		missing = append(missing, "artifactId")
	}
	if c.Version == "" {
		missing = append(missing, "version")
	}
	if len(missing) > 0 {
		return &ConfigurationError{
			Input:  c.String(),
			Reason: "missing " + strings.Join(missing, ", "),
		}
	}
	return nil
}

// Dependency scopes understood by artifact resolvers
const (
	ScopeCompile  = "compile"
	ScopeRuntime  = "runtime"
	ScopeSystem   = "system"
	ScopeProvided = "provided"
	ScopeTest     = "test"
)

// ArtifactResolver maps coordinates to files on the local disk
type ArtifactResolver interface {
	// Resolve returns local paths for coords, in resolution order. With
	// DepthTransitive the dependencies of each coordinate follow it,
	// restricted to the given scopes. An unresolvable coordinate is a
	// ResolutionError.
	Resolve(ctx context.Context, coords []Coordinate, depth DependencyResolutionDepth, scopes []string) ([]string, error)
}

// ProtoFileListing is a set of proto files found beneath one root
type ProtoFileListing struct {
	Root  string
	Files []string
}

// ResolvedPlugin is a protoc plugin that protoc can spawn directly
type ResolvedPlugin struct {
	ID      string
	Path    string
	Options []string
	Order   int
}

// SourceRootRegistrar is told about output directories that hold generated sources
type SourceRootRegistrar interface {
	RegisterSourceRoot(dir string) error
}

// SourceRootRegistrarFunc adapts a function to SourceRootRegistrar
type SourceRootRegistrarFunc func(dir string) error

// RegisterSourceRoot calls f(dir)
func (f SourceRootRegistrarFunc) RegisterSourceRoot(dir string) error {
	return f(dir)
}
