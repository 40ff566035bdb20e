package cli

import (
	"context"
	"fmt"
	"os"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/docker"
	codeexec "github.com/platinummonkey/protogen/pkg/codegen/execute"
	"github.com/platinummonkey/protogen/pkg/codegen/orchestrator"
	"github.com/platinummonkey/protogen/pkg/codegen/protoc"
	"github.com/platinummonkey/protogen/pkg/codegen/scratch"
	"github.com/platinummonkey/protogen/pkg/codegen/sources"
	"github.com/platinummonkey/protogen/pkg/config"
	"github.com/platinummonkey/protogen/pkg/fetch"
	"github.com/platinummonkey/protogen/pkg/host"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/platinummonkey/protogen/pkg/plugins"
	"github.com/platinummonkey/protogen/pkg/repository"
	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// compilerExecutor runs protoc and can capture its output
type compilerExecutor interface {
	orchestrator.Executor
	Output(ctx context.Context, inv protoc.Invocation) (string, error)
}

type envOptions struct {
	keepScratch bool
	registrar   codegen.SourceRootRegistrar
	// mounts are host directories the docker executor must see
	mounts []string
}

// environment is everything one run needs. It owns a fresh scratch space,
// so every run gets its own.
type environment struct {
	log       logrus.FieldLogger
	metrics   *observability.Metrics
	tracer    *sdktrace.TracerProvider
	space     *scratch.Space
	plugins   *plugins.Catalog
	compiler  orchestrator.CompilerResolver
	executor  compilerExecutor
	generator *orchestrator.Generator

	keepScratch bool
	metricsFile string
	closers     []func() error
}

func newEnvironment(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts envOptions) (env *environment, err error) {
	env = &environment{
		log:         log,
		metrics:     observability.NewMetrics(),
		keepScratch: opts.keepScratch,
		metricsFile: cfg.Observability.MetricsFile,
	}
	defer func() {
		if err != nil {
			_ = env.close(ctx)
			env = nil
		}
	}()

	env.tracer, err = observability.InitTracing(ctx, cfg.OTel(), log)
	if err != nil {
		return env, err
	}

	env.space, err = scratch.New(cfg.Scratch.Dir)
	if err != nil {
		return env, err
	}
	log.WithField("scratch", env.space.Root()).Debug("Created scratch space")

	sys := host.Current(cfg.Runtime.JavaHome)
	downloader := fetch.NewDownloader(log)

	repo, err := repository.NewResolver(repository.Config{
		LocalPath: cfg.Repository.Local,
		RemoteURL: cfg.Repository.Remote,
	}, downloader, log)
	if err != nil {
		return env, err
	}

	env.plugins = plugins.NewCatalog(plugins.Config{
		Resolver:   repo,
		Host:       sys,
		Space:      env.space,
		Downloader: downloader,
		Workers:    cfg.Runtime.PluginWorkers,
		Metrics:    env.metrics,
		Log:        log,
	})

	switch cfg.Runtime.Executor {
	case config.ExecutorDocker:
		wd, err := os.Getwd()
		if err != nil {
			return env, fmt.Errorf("failed to get working directory: %w", err)
		}
		mounts := append([]string{env.space.Root(), cfg.Repository.Local}, opts.mounts...)
		dockerExec, err := docker.NewExecutor(docker.Config{
			Image:   cfg.Runtime.DockerImage,
			WorkDir: wd,
			Mounts:  mounts,
			User:    currentUser(),
		}, log)
		if err != nil {
			return env, err
		}
		env.closers = append(env.closers, dockerExec.Close)
		env.executor = dockerExec
		env.compiler = docker.NewResolver("", log)
	default:
		env.executor = codeexec.NewExecutor(log)
		env.compiler = protoc.NewResolver(repo, sys, env.space, log)
	}

	env.generator, err = orchestrator.NewGenerator(orchestrator.Config{
		Artifacts: repo,
		Compiler:  env.compiler,
		Plugins:   env.plugins,
		Listings:  sources.NewCatalog(env.space, log),
		Executor:  env.executor,
		Registrar: opts.registrar,
		Metrics:   env.metrics,
		Log:       log,
	})
	return env, err
}

// close releases the environment. The scratch space is removed unless it
// was asked to be kept.
func (e *environment) close(ctx context.Context) error {
	var errs *multierror.Error

	for _, c := range e.closers {
		if err := c(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if err := e.metrics.WriteToFile(e.metricsFile); err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := observability.ShutdownTracing(ctx, e.tracer, e.log); err != nil {
		errs = multierror.Append(errs, err)
	}

	if e.space != nil {
		if e.keepScratch {
			e.log.WithField("scratch", e.space.Root()).Info("Keeping scratch space")
		} else if err := e.space.Remove(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to remove scratch space: %w", err))
		}
	}

	return errs.ErrorOrNil()
}

// checkExecutorPlugins rejects plugins the configured executor cannot run.
// In a container, path plugins live outside the mounted directories and
// JVM launchers point at the host's shell and java.
func checkExecutorPlugins(cfg *config.Config, req *orchestrator.GenerationRequest) error {
	if cfg.Runtime.Executor != config.ExecutorDocker {
		return nil
	}

	var errs *multierror.Error
	for _, kind := range []plugins.Kind{plugins.KindPath, plugins.KindJVM} {
		for _, d := range req.Plugins.Of(kind) {
			if d.Skip {
				continue
			}
			errs = multierror.Append(errs, &codegen.ConfigurationError{
				Input:  d.String(),
				Reason: fmt.Sprintf("%s plugins are not supported by the docker executor", kind),
			})
		}
	}
	return errs.ErrorOrNil()
}

// requestMounts lists every host path a request reads or writes
func requestMounts(req *orchestrator.GenerationRequest) []string {
	mounts := append([]string{}, req.SourceRoots...)
	mounts = append(mounts, req.ImportPaths...)
	return append(mounts, req.OutputDir())
}

func currentUser() string {
	uid, gid := os.Getuid(), os.Getgid()
	if uid < 0 || gid < 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", uid, gid)
}
