package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/platinummonkey/protogen/pkg/codegen/protoc"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
)

// ErrEmptyInvocation is returned for an invocation without a compiler
var ErrEmptyInvocation = errors.New("invocation has no compiler")

// Executor runs invocations on the local machine
type Executor struct {
	dir string
	env []string
	log logrus.FieldLogger
}

// Option configures an Executor
type Option func(*Executor)

// WithDir runs processes in dir instead of the current directory
func WithDir(dir string) Option {
	return func(e *Executor) {
		e.dir = dir
	}
}

// WithEnv replaces the process environment
func WithEnv(env []string) Option {
	return func(e *Executor) {
		e.env = env
	}
}

// NewExecutor creates a local executor
func NewExecutor(log logrus.FieldLogger, opts ...Option) *Executor {
	if log == nil {
		log = observability.NopLogger()
	}
	e := &Executor{log: log.WithField("component", "executor")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs inv and waits for it. The context is checked before the
// process starts; a running compiler is not interrupted.
func (e *Executor) Execute(ctx context.Context, inv protoc.Invocation) (bool, error) {
	if inv.Len() == 0 {
		return false, ErrEmptyInvocation
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	log := e.log.WithField("compiler", inv.Compiler())
	stdout := log.WithField("stream", "stdout").WriterLevel(logrus.InfoLevel)
	defer stdout.Close()
	stderr := log.WithField("stream", "stderr").WriterLevel(logrus.WarnLevel)
	defer stderr.Close()

	cmd := exec.Command(inv.Compiler(), inv.Arguments()...)
	cmd.Dir = e.dir
	cmd.Env = e.env
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.WithField("command", inv.String()).Debug("Starting compiler")
	start := time.Now()

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.WithFields(logrus.Fields{
				"exit_code": exitErr.ExitCode(),
				"duration":  time.Since(start),
			}).Warn("Compiler exited with an error")
			return false, nil
		}
		return false, fmt.Errorf("failed to run %s: %w", inv.Compiler(), err)
	}

	log.WithField("duration", time.Since(start)).Debug("Compiler finished")
	return true, nil
}

// Output runs inv and returns its standard output. It is used for short
// probes such as protoc --version.
func (e *Executor) Output(ctx context.Context, inv protoc.Invocation) (string, error) {
	if inv.Len() == 0 {
		return "", ErrEmptyInvocation
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cmd := exec.Command(inv.Compiler(), inv.Arguments()...)
	cmd.Dir = e.dir
	cmd.Env = e.env
	cmd.Stderr = io.Discard

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", inv.Compiler(), err)
	}
	return string(out), nil
}
