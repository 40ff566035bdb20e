package docker

import "errors"

var (
	// ErrDockerNotAvailable is returned when the Docker daemon cannot be reached
	ErrDockerNotAvailable = errors.New("docker is not available")

	// ErrImagePullFailed is returned when image pull fails
	ErrImagePullFailed = errors.New("failed to pull docker image")

	// ErrContainerFailed is returned when the container could not be run
	ErrContainerFailed = errors.New("container execution failed")

	// ErrTimeout is returned when execution times out
	ErrTimeout = errors.New("execution timeout")

	// ErrNoImage is returned when no image is configured
	ErrNoImage = errors.New("no docker image configured")
)
