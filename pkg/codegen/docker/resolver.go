package docker

import (
	"context"

	"github.com/platinummonkey/protogen/pkg/codegen/protoc"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
)

// Resolver hands out the compiler baked into the image. The requested
// version cannot be honoured inside a fixed image, so it is only logged.
type Resolver struct {
	compiler string
	log      logrus.FieldLogger
}

// NewResolver returns a resolver for the in-image compiler path
func NewResolver(compiler string, log logrus.FieldLogger) *Resolver {
	if compiler == "" {
		compiler = DefaultCompiler
	}
	if log == nil {
		log = observability.NopLogger()
	}
	return &Resolver{compiler: compiler, log: log.WithField("component", "docker-resolver")}
}

// Resolve returns the in-image compiler path
func (r *Resolver) Resolve(_ context.Context, version string) (string, error) {
	if version != "" && version != protoc.VersionPATH {
		r.log.WithFields(logrus.Fields{
			"requested": version,
			"compiler":  r.compiler,
		}).Warn("Ignoring protoc version, using the compiler from the image")
	}
	return r.compiler, nil
}
