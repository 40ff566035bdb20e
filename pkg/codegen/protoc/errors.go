package protoc

import "errors"

// ErrNoCompiler is returned when the repository yields no protoc artifact
var ErrNoCompiler = errors.New("no protoc artifact resolved")
