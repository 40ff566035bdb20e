package plugins

import "errors"

var (
	// ErrNotAFile is returned when a path plugin does not name a regular file
	ErrNotAFile = errors.New("plugin path is not a regular file")

	// ErrNoArtifact is returned when a coordinate resolves to nothing
	ErrNoArtifact = errors.New("plugin coordinate resolved to no artifact")
)
