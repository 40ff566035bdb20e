package jvm

import "errors"

var (
	// ErrNoArtifacts is returned when the resolver yields nothing for a plugin
	ErrNoArtifacts = errors.New("plugin coordinate resolved to no artifacts")

	// ErrUnquotable is returned when a token cannot be written to a batch file
	ErrUnquotable = errors.New("token cannot be quoted for a batch file")
)
