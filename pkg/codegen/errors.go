package codegen

import (
	"errors"
	"fmt"
)

var (
	// ErrResolution matches every ResolutionError via errors.Is
	ErrResolution = errors.New("resolution failed")

	// ErrConfiguration matches every ConfigurationError via errors.Is
	ErrConfiguration = errors.New("invalid configuration")

	// ErrLanguageNotSupported is returned for unknown target languages
	ErrLanguageNotSupported = errors.New("language not supported")
)

// ConfigurationError reports input that can never work, such as a JVM
// plugin without a main class. It is never retried.
type ConfigurationError struct {
	Input  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Input, e.Reason)
}

// Is lets errors.Is(err, ErrConfiguration) match
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ResolutionError reports an artifact, plugin or executable that could not
// be located. The original cause is kept.
type ResolutionError struct {
	Target string
	Err    error
}

// NewResolutionError wraps err as a failure to resolve target
func NewResolutionError(target string, err error) *ResolutionError {
	return &ResolutionError{Target: target, Err: err}
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to resolve %s", e.Target)
	}
	return fmt.Sprintf("failed to resolve %s: %v", e.Target, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrResolution) match
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}
