package protoc

import (
	"github.com/apparentlymart/go-shquot/shquot"
)

// Invocation is an immutable protoc command line. The first argument is
// the compiler itself.
type Invocation struct {
	args []string
}

// NewInvocation copies args into an invocation
func NewInvocation(args ...string) Invocation {
	return Invocation{args: append([]string(nil), args...)}
}

// Args returns a copy of the command line
func (i Invocation) Args() []string {
	return append([]string(nil), i.args...)
}

// Compiler is the executable the invocation runs
func (i Invocation) Compiler() string {
	if len(i.args) == 0 {
		return ""
	}
	return i.args[0]
}

// Arguments are the arguments after the compiler
func (i Invocation) Arguments() []string {
	if len(i.args) < 2 {
		return nil
	}
	return append([]string(nil), i.args[1:]...)
}

// Len is the number of tokens including the compiler
func (i Invocation) Len() int {
	return len(i.args)
}

// String renders the invocation as a shell command for logs
func (i Invocation) String() string {
	return shquot.POSIXShell(i.args)
}
