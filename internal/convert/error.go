package convert

import (
	"errors"
	"fmt"

	"dumpcheck/internal/tools"
)

// Error reports a failed conversion of one dump. It carries the offending
// path and, when the failing tool's output was captured, that output.
// Conversions fail independently: a batch records the error and moves on.
type Error struct {
	Path   string
	Output string
	msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %q", e.msg, e.Path)
}

func errorf(path string, format string, args ...any) *Error {
	return &Error{Path: path, msg: fmt.Sprintf(format, args...)}
}

// WrapToolFailure converts a tool invocation failure into a conversion
// error for path, preserving any captured tool output.
func WrapToolFailure(err error, path string, format string, args ...any) *Error {
	convErr := errorf(path, format, args...)
	var cmdErr *tools.CommandError
	if errors.As(err, &cmdErr) {
		convErr.Output = cmdErr.Output
	}
	return convErr
}
