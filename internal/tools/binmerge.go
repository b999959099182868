package tools

import (
	"bytes"
	"context"
	"os"
)

// Binmerge splits a combined multi-track binary into per-track files.
type Binmerge struct {
	clientBase
	binary string
}

// NewBinmerge constructs a binmerge client.
func NewBinmerge(binary string, opts ...Option) (*Binmerge, error) {
	binary, err := requireBinary("binmerge", binary)
	if err != nil {
		return nil, err
	}
	return &Binmerge{clientBase: newClientBase(opts), binary: binary}, nil
}

// Split runs binmerge --split against cuePath, writing per-track binaries
// and a rewritten cue sheet named basename into outputDir. Output is
// captured so failures can carry it; with showOutput it is echoed after the
// run completes.
func (b *Binmerge) Split(ctx context.Context, cuePath, outputDir, basename string, showOutput bool) error {
	var output bytes.Buffer
	args := []string{"--split", "-o", outputDir, cuePath, basename}
	err := b.exec.Run(ctx, b.binary, args, &output, &output)
	if showOutput {
		_, _ = os.Stdout.Write(output.Bytes())
	}
	if err != nil {
		return &CommandError{Tool: "binmerge", Output: output.String(), Err: err}
	}
	return nil
}
