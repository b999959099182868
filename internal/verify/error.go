package verify

import "fmt"

// Error reports a content or structure mismatch for one dump. Like
// conversion errors it is recorded per item and never aborts a batch.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Errorf builds a verification error.
func Errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}
