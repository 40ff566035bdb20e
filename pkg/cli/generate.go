package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/orchestrator"
	"github.com/platinummonkey/protogen/pkg/config"
	"github.com/platinummonkey/protogen/pkg/watch"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	file          string
	output        string
	protocVersion string
	languages     []string
	lite          bool
	fatalWarnings bool
	failOnMissing bool
	registerFile  string
	keepScratch   bool
	watch         bool
	delay         time.Duration
}

func newGenerateCommand(a *app) *cobra.Command {
	o := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run protoc for a request file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, a, o)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.file, "file", "f", config.DefaultRequestFile, "Generation request file")
	flags.StringVarP(&o.output, "output", "o", "", "Output directory (overrides outputDirectory)")
	flags.StringVar(&o.protocVersion, "protoc-version", "", "protoc version, PATH or a file (overrides protocVersion)")
	flags.StringSliceVarP(&o.languages, "language", "l", nil, "Target language, repeatable (replaces languages)")
	flags.BoolVar(&o.lite, "lite", false, "Generate lite code where supported")
	flags.BoolVar(&o.fatalWarnings, "fatal-warnings", false, "Treat protoc warnings as errors")
	flags.BoolVar(&o.failOnMissing, "fail-on-missing-sources", false, "Fail when no proto sources are found")
	flags.StringVar(&o.registerFile, "register-file", "", "Append the output directory to this file when it is registered as a compilation root")
	flags.BoolVar(&o.keepScratch, "keep-scratch", false, "Keep the scratch directory after the run")
	flags.BoolVarP(&o.watch, "watch", "w", false, "Regenerate when proto files under the source roots change")
	flags.DurationVar(&o.delay, "watch-delay", watch.DefaultDelay, "Quiet period before regenerating in watch mode")

	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, o *generateOptions) error {
	if err := a.ready(); err != nil {
		return err
	}

	req, err := config.LoadRequest(o.file)
	if err != nil {
		return err
	}
	if err := o.apply(cmd, req); err != nil {
		return err
	}

	ctx := cmd.Context()
	if !o.watch {
		_, err := generateOnce(ctx, a, o, req)
		return err
	}

	if _, err := generateOnce(ctx, a, o, req); err != nil {
		a.log.WithError(err).Error("Initial generation failed")
	}
	w := watch.New(req.SourceRoots, o.delay, func(ctx context.Context, _ []string) error {
		_, err := generateOnce(ctx, a, o, req)
		return err
	}, a.log)
	return w.Run(ctx)
}

// apply overrides request settings with flags given on the command line
func (o *generateOptions) apply(cmd *cobra.Command, req *orchestrator.GenerationRequest) error {
	flags := cmd.Flags()

	if flags.Changed("output") {
		out, err := filepath.Abs(o.output)
		if err != nil {
			return err
		}
		req.OutputDirectory = out
	}
	if flags.Changed("protoc-version") {
		req.ProtocVersion = o.protocVersion
	}
	if flags.Changed("language") {
		req.Languages = codegen.NewLanguageSet()
		for _, name := range o.languages {
			lang, err := codegen.ParseLanguage(name)
			if err != nil {
				return err
			}
			req.Languages[lang] = true
		}
	}
	if flags.Changed("lite") {
		req.LiteEnabled = o.lite
	}
	if flags.Changed("fatal-warnings") {
		req.FatalWarnings = o.fatalWarnings
	}
	if flags.Changed("fail-on-missing-sources") {
		req.FailOnMissingSources = o.failOnMissing
	}
	if o.registerFile != "" {
		req.RegisterAsCompilationRoot = true
	}
	return req.Validate()
}

func (o *generateOptions) registrar(log logrus.FieldLogger) codegen.SourceRootRegistrar {
	if o.registerFile != "" {
		return fileRegistrar(o.registerFile)
	}
	return logRegistrar(log)
}

// generateOnce runs one generation in a fresh environment
func generateOnce(ctx context.Context, a *app, o *generateOptions, req *orchestrator.GenerationRequest) (result *orchestrator.Result, err error) {
	if err := checkExecutorPlugins(a.cfg, req); err != nil {
		return nil, err
	}

	env, err := newEnvironment(ctx, a.cfg, a.log, envOptions{
		keepScratch: o.keepScratch,
		registrar:   o.registrar(a.log),
		mounts:      requestMounts(req),
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := env.close(ctx); cerr != nil {
			a.log.WithError(cerr).Warn("Failed to clean up after generation")
		}
	}()

	result, err = env.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := a.log.WithFields(logrus.Fields{
		"status":   result.Status,
		"files":    result.SourceCount,
		"plugins":  len(result.Plugins),
		"duration": result.Duration.Round(time.Millisecond),
	})
	if !result.Success() {
		entry.Error("Generation did not succeed")
		return result, fmt.Errorf("%w: %s", ErrGenerationFailed, result.Status)
	}
	entry.Info("Generation complete")
	return result, nil
}
