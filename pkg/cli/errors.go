package cli

import "errors"

var (
	// ErrGenerationFailed is returned when a run finishes without success
	ErrGenerationFailed = errors.New("generation failed")
)
