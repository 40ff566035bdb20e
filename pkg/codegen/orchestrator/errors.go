package orchestrator

import "errors"

var (
	// ErrNilRequest is returned when Generate is called without a request
	ErrNilRequest = errors.New("generation request cannot be nil")

	// ErrMissingCollaborator is returned when a Generator is built without
	// one of its required collaborators
	ErrMissingCollaborator = errors.New("generator collaborator missing")
)
