package cli

import (
	"fmt"

	"github.com/platinummonkey/protogen/pkg/config"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app is the state shared by every command
type app struct {
	logLevel  string
	logFormat string

	cfg *config.Config
	log *logrus.Logger
}

// NewRootCommand creates the protogen command tree
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:               "protogen",
		Short:             "Generate code from protobuf sources with protoc and its plugins",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides PROTOGEN_LOG_LEVEL)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json (overrides PROTOGEN_LOG_FORMAT)")

	root.AddCommand(
		newGenerateCommand(a),
		newPluginsCommand(a),
		newLanguagesCommand(),
		newVersionCommand(a, version),
	)
	return root
}

// setup loads configuration and builds the logger before any command runs
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		level, err := observability.ParseLevel(a.logLevel)
		if err != nil {
			return err
		}
		cfg.Log.Level = level
	}
	if a.logFormat != "" {
		format, err := observability.ParseFormat(a.logFormat)
		if err != nil {
			return err
		}
		cfg.Log.Format = format
	}

	a.cfg = cfg
	a.log = observability.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	a.log.WithFields(logrus.Fields{
		"executor":   cfg.Runtime.Executor,
		"repository": cfg.Repository.Local,
	}).Debug("Configuration loaded")
	return nil
}

func (a *app) ready() error {
	if a.cfg == nil || a.log == nil {
		return fmt.Errorf("configuration not loaded")
	}
	return nil
}
