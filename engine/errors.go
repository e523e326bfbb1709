package engine

import (
	"errors"
	"fmt"
)

var (
	ErrCallback  = errors.New("command callback failed")
	ErrExecDepth = errors.New("exec nesting too deep")
)

// CallbackError wraps a failure raised by a registered command's callback,
// including recovered panics. Err carries the stack where it was captured;
// format with %+v to print it.
type CallbackError struct {
	Command string
	Err     error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCallback.
func (e *CallbackError) Is(target error) bool {
	return target == ErrCallback
}

// Format prints the wrapped stack for %+v.
func (e *CallbackError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.Command, e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}

// ExecDepthError stops a chain of exec commands that nests deeper than the
// configured limit.
type ExecDepthError struct {
	Path  string
	Limit int
}

func (e *ExecDepthError) Error() string {
	return fmt.Sprintf("exec %s: nesting deeper than %d", e.Path, e.Limit)
}

// Is reports whether target is ErrExecDepth.
func (e *ExecDepthError) Is(target error) bool {
	return target == ErrExecDepth
}
