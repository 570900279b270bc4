package cli

import (
	"errors"
	"fmt"

	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// Process exit codes.
const (
	ExitSuccess           = 0
	ExitRunFailure        = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// InvocationError reports a command line that could not be parsed.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// InternalError wraps a panic recovered at the command boundary.
type InternalError struct {
	Value any
}

func (e *InternalError) Error() string { return fmt.Sprintf("internal error: %v", e.Value) }

// ExitCode maps an error returned by Run to the process exit code.
//
//	nil                            0
//	run failure, unreadable input  1
//	invalid invocation             2
//	configuration error            3
//	internal error, panic          4
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}

	var intErr *InternalError
	switch {
	case errors.As(err, &intErr):
		return ExitInternalError
	case errors.Is(err, failure.ErrConfiguration):
		return ExitConfigError
	default:
		return ExitRunFailure
	}
}
