package protoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/scratch"
	"github.com/platinummonkey/protogen/pkg/host"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
)

// VersionPATH selects the protoc found on PATH
const VersionPATH = "PATH"

// Resolver locates the protoc executable for a requested version
type Resolver struct {
	artifacts codegen.ArtifactResolver
	host      *host.System
	space     *scratch.Space
	log       logrus.FieldLogger
}

// NewResolver creates a compiler resolver. Versions that are neither PATH
// nor an existing file are fetched through artifacts and copied into space.
func NewResolver(artifacts codegen.ArtifactResolver, sys *host.System, space *scratch.Space, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = observability.NopLogger()
	}
	if sys == nil {
		sys = host.Current("")
	}
	return &Resolver{
		artifacts: artifacts,
		host:      sys,
		space:     space,
		log:       log.WithField("component", "protoc-resolver"),
	}
}

// Resolve returns the path of an executable protoc. version is "" or PATH
// for a PATH lookup, a path to an existing file, or a release version such
// as 25.1.
func (r *Resolver) Resolve(ctx context.Context, version string) (string, error) {
	if version == "" || version == VersionPATH {
		path, err := r.host.LookPath("protoc")
		if err != nil {
			return "", codegen.NewResolutionError("protoc", err)
		}
		r.log.WithField("path", path).Debug("Using protoc from PATH")
		return path, nil
	}

	if info, err := os.Stat(version); err == nil && info.Mode().IsRegular() {
		r.log.WithField("path", version).Debug("Using protoc from explicit path")
		return version, nil
	}

	return r.fromRepository(ctx, version)
}

func (r *Resolver) fromRepository(ctx context.Context, version string) (string, error) {
	if r.artifacts == nil || r.space == nil {
		return "", &codegen.ConfigurationError{Input: version, Reason: "no artifact repository to fetch protoc from"}
	}

	classifier, err := r.host.PlatformClassifier()
	if err != nil {
		return "", codegen.NewResolutionError("protoc "+version, err)
	}
	coord := codegen.Coordinate{
		GroupID:    "com.google.protobuf",
		ArtifactID: "protoc",
		Version:    version,
		Type:       "exe",
		Classifier: classifier,
	}

	paths, err := r.artifacts.Resolve(ctx, []codegen.Coordinate{coord}, codegen.DepthDirect, nil)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", codegen.NewResolutionError(coord.String(), ErrNoCompiler)
	}

	dir, err := r.space.Dir("compiler", version)
	if err != nil {
		return "", err
	}
	name := "protoc"
	if r.host.IsWindows() {
		name += ".exe"
	}
	dst := filepath.Join(dir, name)

	in, err := os.Open(paths[0])
	if err != nil {
		return "", codegen.NewResolutionError(coord.String(), err)
	}
	defer in.Close()
	if err := scratch.CreateFrom(dst, in, 0o644); err != nil {
		return "", err
	}
	if err := r.host.MakeExecutable(dst); err != nil {
		return "", fmt.Errorf("failed to make %s executable: %w", dst, err)
	}

	r.log.WithFields(logrus.Fields{
		"coordinate": coord.String(),
		"path":       dst,
	}).Debug("Using protoc from artifact repository")
	return dst, nil
}
