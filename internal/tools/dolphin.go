package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
)

// DolphinTool hashes the logical payload of RVZ disc images.
type DolphinTool struct {
	clientBase
	binary string
}

// NewDolphinTool constructs a DolphinTool client.
func NewDolphinTool(binary string, opts ...Option) (*DolphinTool, error) {
	binary, err := requireBinary("DolphinTool", binary)
	if err != nil {
		return nil, err
	}
	return &DolphinTool{clientBase: newClientBase(opts), binary: binary}, nil
}

// VerifySHA1 asks DolphinTool for the SHA-1 of the uncompressed payload of
// imagePath. DolphinTool insists on a user folder; a throwaway temporary one
// keeps runs independent of any local Dolphin installation.
func (d *DolphinTool) VerifySHA1(ctx context.Context, imagePath string, showOutput bool) (string, error) {
	userDir, err := os.MkdirTemp("", "dumpcheck-dolphin-")
	if err != nil {
		return "", fmt.Errorf("create DolphinTool user folder: %w", err)
	}
	defer os.RemoveAll(userDir)

	var stdout, stderr bytes.Buffer
	args := []string{"verify", "-u", userDir, "-i", imagePath, "--algorithm=sha1"}
	runErr := d.exec.Run(ctx, d.binary, args, &stdout, &stderr)
	if showOutput {
		_, _ = os.Stderr.Write(stderr.Bytes())
	}
	if runErr != nil {
		return "", &CommandError{Tool: "DolphinTool", Output: stderr.String(), Err: runErr}
	}
	return strings.TrimSpace(stdout.String()), nil
}
