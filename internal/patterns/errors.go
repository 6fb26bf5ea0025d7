package patterns

import "github.com/pkg/errors"

// CompileError is returned by Compile when a pattern string is malformed.
// It is fatal to the call and must not be swallowed by callers.
type CompileError struct {
	Reason string
	cause  error
}

func (e *CompileError) Error() string {
	return "malformed pattern: " + e.Reason
}

// Unwrap exposes the wrapped stack-trace-carrying cause for errors.As/Is.
func (e *CompileError) Unwrap() error {
	return e.cause
}

func newCompileError(reason string) *CompileError {
	return &CompileError{Reason: reason, cause: errors.New(reason)}
}

var (
	errUnclosedClass = newCompileError("unclosed character class: missing ']'")
	errUnclosedGroup = newCompileError("unclosed group: missing ')'")
)
