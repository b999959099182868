package tools

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, stdout, stderr io.Writer) error
}

// Option configures a tool client.
type Option func(*clientBase)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *clientBase) {
		if exec != nil {
			c.exec = exec
		}
	}
}

type clientBase struct {
	exec Executor
}

func newClientBase(opts []Option) clientBase {
	base := clientBase{exec: commandExecutor{}}
	for _, opt := range opts {
		opt(&base)
	}
	return base
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", binary, err)
	}
	return nil
}

// CommandError reports a tool invocation that exited with failure. Output
// holds whatever the tool wrote, when the client captures it; chdman output
// is never captured, so its errors carry none.
type CommandError struct {
	Tool   string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func requireBinary(name, binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", fmt.Errorf("%s binary required", name)
	}
	return binary, nil
}
