package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/platinummonkey/protogen/pkg/plugins"
	"github.com/sirupsen/logrus"
)

// Executors understood by EXECUTOR
const (
	ExecutorLocal  = "local"
	ExecutorDocker = "docker"
)

const envPrefix = "PROTOGEN_"

// Config holds all process configuration
type Config struct {
	Log           LogConfig
	Scratch       ScratchConfig
	Repository    RepositoryConfig
	Runtime       RuntimeConfig
	Observability ObservabilityConfig
}

// LogConfig selects the logger level and output format
type LogConfig struct {
	Level  logrus.Level
	Format observability.LogFormat
}

// ScratchConfig controls the run-scoped scratch space
type ScratchConfig struct {
	// Dir is the base directory. Empty uses the OS temporary directory.
	Dir string
	// Keep leaves the run directory in place after the run
	Keep bool
}

// RepositoryConfig locates the artifact repository
type RepositoryConfig struct {
	Local  string
	Remote string
}

// RuntimeConfig controls how plugins and the compiler run
type RuntimeConfig struct {
	JavaHome      string
	Executor      string
	DockerImage   string
	PluginWorkers int
}

// ObservabilityConfig holds metrics and tracing settings
type ObservabilityConfig struct {
	MetricsFile string

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from PROTOGEN_* environment variables.
// Every invalid setting is reported, not just the first.
func LoadConfig() (*Config, error) {
	var errs *multierror.Error

	level, err := observability.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	format, err := observability.ParseFormat(getEnv("LOG_FORMAT", string(observability.TextFormat)))
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	workers, err := getEnvInt("PLUGIN_WORKERS", plugins.DefaultWorkers)
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	cfg := &Config{
		Log: LogConfig{Level: level, Format: format},
		Scratch: ScratchConfig{
			Dir:  getEnv("SCRATCH_DIR", ""),
			Keep: getEnvBool("KEEP_SCRATCH", false),
		},
		Repository: RepositoryConfig{
			Local:  getEnv("LOCAL_REPOSITORY", defaultLocalRepository()),
			Remote: getEnv("REMOTE_REPOSITORY", ""),
		},
		Runtime: RuntimeConfig{
			JavaHome:      getEnv("JAVA_HOME", os.Getenv("JAVA_HOME")),
			Executor:      getEnv("EXECUTOR", ExecutorLocal),
			DockerImage:   getEnv("DOCKER_IMAGE", ""),
			PluginWorkers: workers,
		},
		Observability: ObservabilityConfig{
			MetricsFile:        getEnv("METRICS_FILE", ""),
			OTelEnabled:        getEnvBool("OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("OTEL_SERVICE_NAME", "protogen"),
			OTelServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			OTelInsecure:       getEnvBool("OTEL_INSECURE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c *Config) Validate() error {
	var errs *multierror.Error

	switch c.Runtime.Executor {
	case ExecutorLocal:
	case ExecutorDocker:
		if c.Runtime.DockerImage == "" {
			errs = multierror.Append(errs, fmt.Errorf("%sDOCKER_IMAGE is required for the docker executor", envPrefix))
		}
	default:
		errs = multierror.Append(errs, fmt.Errorf("invalid executor %q (must be %s or %s)", c.Runtime.Executor, ExecutorLocal, ExecutorDocker))
	}

	if c.Runtime.PluginWorkers < 1 {
		errs = multierror.Append(errs, fmt.Errorf("plugin workers must be at least 1, got %d", c.Runtime.PluginWorkers))
	}

	if c.Repository.Local == "" {
		errs = multierror.Append(errs, fmt.Errorf("%sLOCAL_REPOSITORY is required", envPrefix))
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			errs = multierror.Append(errs, fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled"))
		}
		if c.Observability.OTelServiceName == "" {
			errs = multierror.Append(errs, fmt.Errorf("OpenTelemetry service name is required when OTel is enabled"))
		}
	}

	return errs.ErrorOrNil()
}

// OTel converts the tracing settings for observability.InitTracing
func (c *Config) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.Observability.OTelEnabled,
		Endpoint:       c.Observability.OTelEndpoint,
		ServiceName:    c.Observability.OTelServiceName,
		ServiceVersion: c.Observability.OTelServiceVersion,
		Insecure:       c.Observability.OTelInsecure,
	}
}

func defaultLocalRepository() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".m2", "repository")
}

// getEnv returns PROTOGEN_<key> or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean PROTOGEN_<key> or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer PROTOGEN_<key> or a default. Unlike the
// other helpers a malformed value is an error.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s%s: %q is not an integer", envPrefix, key, value)
	}
	return n, nil
}
