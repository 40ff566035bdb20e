package docker

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/protoc"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
)

// Executor runs protoc invocations inside a container. Host directories
// listed in the config are bind-mounted at identical paths so the
// invocation's paths are valid on both sides.
type Executor struct {
	api    containerAPI
	config Config
	log    logrus.FieldLogger

	mu     sync.Mutex
	pulled map[string]bool
}

// NewExecutor connects to the Docker daemon described by the environment
func NewExecutor(cfg Config, log logrus.FieldLogger) (*Executor, error) {
	if cfg.Image == "" {
		return nil, &codegen.ConfigurationError{Input: "docker image", Reason: ErrNoImage.Error()}
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDockerNotAvailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("%w: %v", ErrDockerNotAvailable, err)
	}

	return newExecutor(cli, cfg, log), nil
}

func newExecutor(api containerAPI, cfg Config, log logrus.FieldLogger) *Executor {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Executor{
		api:    api,
		config: cfg.withDefaults(),
		log:    log.WithFields(logrus.Fields{"component": "docker-executor", "image": cfg.Image}),
		pulled: make(map[string]bool),
	}
}

// Execute runs inv in a fresh container and reports whether it exited 0
func (e *Executor) Execute(ctx context.Context, inv protoc.Invocation) (bool, error) {
	code, stdout, stderr, err := e.run(ctx, inv)
	if err != nil {
		return false, err
	}

	logLines(e.log.WithField("stream", "stdout"), logrus.InfoLevel, stdout)
	logLines(e.log.WithField("stream", "stderr"), logrus.WarnLevel, stderr)

	if code != 0 {
		e.log.WithField("exit_code", code).Warn("Compiler exited with an error")
		return false, nil
	}
	return true, nil
}

// Output runs inv and returns its standard output
func (e *Executor) Output(ctx context.Context, inv protoc.Invocation) (string, error) {
	code, stdout, stderr, err := e.run(ctx, inv)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("%w: exit code %d: %s", ErrContainerFailed, code, strings.TrimSpace(stderr))
	}
	return stdout, nil
}

// PullImage ensures the image is available locally
func (e *Executor) PullImage(ctx context.Context, ref string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pulled[ref] {
		return nil
	}

	if _, err := e.api.ImageInspect(ctx, ref); err == nil {
		e.pulled[ref] = true
		return nil
	}

	pullCtx, cancel := context.WithTimeout(ctx, DefaultPullTimeout)
	defer cancel()

	e.log.WithField("ref", ref).Info("Pulling image")
	reader, err := e.api.ImagePull(pullCtx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrImagePullFailed, ref, err)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrImagePullFailed, ref, err)
	}

	e.pulled[ref] = true
	return nil
}

// Close releases the Docker client
func (e *Executor) Close() error {
	if e.api != nil {
		return e.api.Close()
	}
	return nil
}

// run creates, starts and waits for one container. The container is
// removed before returning.
func (e *Executor) run(ctx context.Context, inv protoc.Invocation) (int, string, string, error) {
	if inv.Len() == 0 {
		return 0, "", "", fmt.Errorf("%w: empty invocation", ErrContainerFailed)
	}
	if err := e.PullImage(ctx, e.config.Image); err != nil {
		return 0, "", "", err
	}

	id, err := e.createContainer(ctx, inv)
	if err != nil {
		return 0, "", "", fmt.Errorf("%w: %v", ErrContainerFailed, err)
	}
	defer func() {
		if err := e.api.ContainerRemove(context.Background(), id, container.RemoveOptions{
			Force:         true,
			RemoveVolumes: true,
		}); err != nil {
			e.log.WithError(err).WithField("container", id).Warn("Failed to remove container")
		}
	}()

	if err := e.api.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return 0, "", "", fmt.Errorf("%w: start failed: %v", ErrContainerFailed, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	var code int
	statusCh, errCh := e.api.ContainerWait(waitCtx, id, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			if waitCtx.Err() != nil {
				return 0, "", "", ErrTimeout
			}
			return 0, "", "", fmt.Errorf("%w: wait failed: %v", ErrContainerFailed, err)
		}
	case status := <-statusCh:
		code = int(status.StatusCode)
	case <-waitCtx.Done():
		return 0, "", "", ErrTimeout
	}

	logs, err := e.api.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		e.log.WithError(err).Warn("Failed to read container logs")
		return code, "", "", nil
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		e.log.WithError(err).Warn("Failed to demultiplex container logs")
	}
	return code, stdout.String(), stderr.String(), nil
}

func (e *Executor) createContainer(ctx context.Context, inv protoc.Invocation) (string, error) {
	env := make([]string, 0, len(e.config.Env))
	for k, v := range e.config.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)

	config := &container.Config{
		Image:        e.config.Image,
		Entrypoint:   []string{inv.Compiler()},
		Cmd:          inv.Arguments(),
		Env:          env,
		WorkingDir:   e.config.WorkDir,
		User:         e.config.User,
		AttachStdout: true,
		AttachStderr: true,
	}

	hostConfig := &container.HostConfig{
		Binds: binds(e.config.WorkDir, e.config.Mounts),
		Resources: container.Resources{
			Memory:   e.config.MemoryLimit,
			NanoCPUs: int64(e.config.CPULimit * 1e9),
		},
	}

	resp, err := e.api.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container: %v", err)
	}
	for _, w := range resp.Warnings {
		e.log.WithField("container", resp.ID).Warn(w)
	}
	return resp.ID, nil
}

// binds mounts every distinct directory at the same path inside the container
func binds(workDir string, mounts []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, dir := range append([]string{workDir}, mounts...) {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		out = append(out, dir+":"+dir)
	}
	return out
}

func logLines(log *logrus.Entry, level logrus.Level, text string) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			log.Log(level, line)
		}
	}
}
