package convert

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"dumpcheck/internal/logging"
	"dumpcheck/internal/tools"
)

// Converter drives chdman and binmerge to turn CHD dumps into normalized
// Redump-style dump folders.
type Converter struct {
	chdman   *tools.Chdman
	binmerge *tools.Binmerge
	logger   *slog.Logger
}

// New constructs a converter around the given tool clients.
func New(chdman *tools.Chdman, binmerge *tools.Binmerge, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Converter{chdman: chdman, binmerge: binmerge, logger: logger}
}

// ToNormalizedFolder extracts chdPath into destDir as a normalized Redump
// dump for the named system. It reports whether the cue sheet normalization
// rules for that system are known.
func (c *Converter) ToNormalizedFolder(ctx context.Context, chdPath, destDir, system string, showOutput bool) (normalized bool, err error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return false, errorf(destDir, "create output folder: %v", err)
	}

	game := stem(chdPath)

	if UsesGDROM(system) {
		// chdman supports GD-ROM dumps, but only converts them correctly to
		// and from gdi format; the cue route produces wrong results. The
		// track binaries are identical either way, so extract to gdi and
		// reconstruct the cue sheet the catalogs refer to.
		c.logger.Debug("converting to bin/gdi", "dump", filepath.Base(chdPath))
		gdiPath := filepath.Join(destDir, game+".gdi")
		if err := c.chdman.ExtractCD(ctx, chdPath, gdiPath, showOutput); err != nil {
			return false, WrapToolFailure(err, chdPath, "failed to convert .chd to .bin/.gdi using chdman")
		}
		if err := NormalizeGDIDump(gdiPath); err != nil {
			return false, err
		}
		return true, nil
	}

	// chdman output goes to its own scratch folder so the binmerge results
	// are the only thing left in destDir.
	workDir, err := os.MkdirTemp("", "dumpcheck-chdman-")
	if err != nil {
		return false, errorf(chdPath, "create scratch folder: %v", err)
	}
	defer os.RemoveAll(workDir)

	c.logger.Debug("converting to bin/cue", "dump", filepath.Base(chdPath))
	workCue := filepath.Join(workDir, game+".cue")
	if err := c.chdman.ExtractCD(ctx, chdPath, workCue, showOutput); err != nil {
		return false, WrapToolFailure(err, chdPath, "failed to convert .chd using chdman")
	}

	c.logger.Debug("splitting into separate tracks", "dump", filepath.Base(chdPath))
	if err := c.binmerge.Split(ctx, workCue, destDir, game, showOutput); err != nil {
		return false, WrapToolFailure(err, chdPath, "failed to split .bin into separate tracks using binmerge")
	}

	cuePath := filepath.Join(destDir, game+".cue")
	return NormalizeDumpFolder(cuePath, system)
}
