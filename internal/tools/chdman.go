package tools

import (
	"context"
	"io"
	"os"
)

// Chdman extracts CD images from CHD dumps.
type Chdman struct {
	clientBase
	binary string
}

// NewChdman constructs a chdman client.
func NewChdman(binary string, opts ...Option) (*Chdman, error) {
	binary, err := requireBinary("chdman", binary)
	if err != nil {
		return nil, err
	}
	return &Chdman{clientBase: newClientBase(opts), binary: binary}, nil
}

// ExtractCD runs chdman extractcd, writing output to the path given by
// output. The extension of output selects the emitted descriptor: a .cue
// path yields bin/cue, a .gdi path yields bin/gdi (the only correct route
// for GD-ROM dumps).
//
// chdman writes progress to stderr, so stderr stays attached to the
// terminal; capturing it would both hide the user's only feedback during a
// long extraction and buffer it pointlessly.
func (c *Chdman) ExtractCD(ctx context.Context, input, output string, showOutput bool) error {
	stdout := io.Discard
	if showOutput {
		stdout = os.Stdout
	}
	args := []string{"extractcd", "--input", input, "--output", output}
	if err := c.exec.Run(ctx, c.binary, args, stdout, os.Stderr); err != nil {
		return &CommandError{Tool: "chdman", Err: err}
	}
	return nil
}
