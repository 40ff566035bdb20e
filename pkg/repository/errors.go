package repository

import "errors"

var (
	// ErrArtifactNotFound is returned when an artifact is in neither the
	// local nor the remote repository
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInvalidPOM is returned when a POM cannot be parsed or is incomplete
	ErrInvalidPOM = errors.New("invalid POM")

	// ErrParentCycle is returned when POM parents refer back to each other
	ErrParentCycle = errors.New("POM parent cycle")
)
