package docker

import (
	"context"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Defaults for container execution
const (
	DefaultCompiler    = "protoc"
	DefaultMemoryLimit = int64(512 * 1024 * 1024)
	DefaultCPULimit    = 1.0
	DefaultTimeout     = 5 * time.Minute
	DefaultPullTimeout = 5 * time.Minute
)

// Config describes the container protoc runs in
type Config struct {
	// Image is the image reference holding protoc, e.g. "example/protoc:25.1"
	Image string

	// Compiler is the protoc path inside the image
	Compiler string

	// WorkDir is mounted at the same path and used as the working directory
	WorkDir string

	// Mounts are host directories made visible at identical paths, such as
	// the scratch space, the output directory and the local repository
	Mounts []string

	// User runs the compiler as uid:gid so generated files stay owned by
	// the caller. Empty uses the image default.
	User string

	MemoryLimit int64
	CPULimit    float64
	Timeout     time.Duration

	Env map[string]string
}

func (c Config) withDefaults() Config {
	if c.Compiler == "" {
		c.Compiler = DefaultCompiler
	}
	if c.MemoryLimit == 0 {
		c.MemoryLimit = DefaultMemoryLimit
	}
	if c.CPULimit == 0 {
		c.CPULimit = DefaultCPULimit
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// containerAPI is the part of the Docker client the executor drives
type containerAPI interface {
	ImageInspect(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (image.InspectResponse, error)
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Close() error
}
