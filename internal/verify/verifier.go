package verify

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dumpcheck/internal/catalog"
	"dumpcheck/internal/convert"
	"dumpcheck/internal/logging"
	"dumpcheck/internal/resultcache"
	"dumpcheck/internal/tools"
)

// Options carries the per-run verification policy.
type Options struct {
	// ShowToolOutput echoes external tool output instead of discarding it.
	ShowToolOutput bool
	// AllowCueMismatches downgrades non-matching cue sheets from errors to
	// warnings.
	AllowCueMismatches bool
	// ExtraCueSource optionally names a file, directory, or zip of original
	// cue sheets used to reconcile reconstructed ones.
	ExtraCueSource string
}

// Verifier checks dump files against one catalog.
type Verifier struct {
	cat       *catalog.Catalog
	converter *convert.Converter
	dolphin   *tools.DolphinTool
	cache     *resultcache.Store
	logger    *slog.Logger
	opts      Options
}

// New constructs a verifier. cache may be nil to disable result caching.
func New(cat *catalog.Catalog, converter *convert.Converter, dolphin *tools.DolphinTool, cache *resultcache.Store, logger *slog.Logger, opts Options) *Verifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Verifier{cat: cat, converter: converter, dolphin: dolphin, cache: cache, logger: logger, opts: opts}
}

// verifyCHD converts the CHD into a normalized dump folder in a private
// temporary directory and verifies the folder's contents.
func (v *Verifier) verifyCHD(ctx context.Context, path string) (*catalog.Game, error) {
	v.logger.Debug("verifying dump file", "dump", path)

	if v.cache != nil {
		game, outcomeName, ok, err := v.cache.LookupDump(ctx, path, v.cat)
		if err != nil {
			return nil, err
		}
		if ok {
			if outcome, valid := ParseCueOutcome(outcomeName); valid {
				v.logger.Debug("using cached verification result", "dump", filepath.Base(path))
				if err := v.reportCueOutcome(game, outcome); err != nil {
					return nil, err
				}
				return game, nil
			}
		}
	}

	// Extraction directories are private per dump so concurrent
	// verifications can never collide.
	tempDir := filepath.Join(os.TempDir(), "dumpcheck-"+uuid.NewString())
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, Errorf("cannot create extraction folder: %v", err)
	}
	defer os.RemoveAll(tempDir)

	normalized, err := v.converter.ToNormalizedFolder(ctx, path, tempDir, v.cat.System, v.opts.ShowToolOutput)
	if err != nil {
		return nil, err
	}
	if !normalized {
		v.logger.Debug("cue normalization rules unknown for system; cue sheet may not match the catalog",
			"system", v.cat.System)
	}

	result, err := VerifyFolder(tempDir, v.cat, v.opts.ExtraCueSource)
	if err != nil {
		return nil, err
	}

	if err := v.reportCueOutcome(result.Game, result.CueOutcome); err != nil {
		return nil, err
	}

	if v.cache != nil {
		if err := v.cache.StoreDump(ctx, path, result.Game, result.CueOutcome.String()); err != nil {
			return nil, err
		}
	}
	return result.Game, nil
}

// verifyRVZ hashes the image's logical payload with DolphinTool and matches
// the hash directly; RVZ images are single files with no cue sheet.
func (v *Verifier) verifyRVZ(ctx context.Context, path string) (*catalog.Game, error) {
	v.logger.Debug("verifying dump file", "dump", path)

	var sha1hex string
	cached := false
	if v.cache != nil {
		if hash, ok, err := v.cache.LookupImageSHA1(ctx, path); err != nil {
			return nil, err
		} else if ok {
			v.logger.Debug("using cached payload hash", "dump", filepath.Base(path))
			sha1hex = hash
			cached = true
		}
	}
	if !cached {
		hash, err := v.dolphin.VerifySHA1(ctx, path, v.opts.ShowToolOutput)
		if err != nil {
			return nil, convertToolError(err, path)
		}
		sha1hex = hash
		if v.cache != nil {
			if err := v.cache.StoreImageSHA1(ctx, path, sha1hex); err != nil {
				return nil, err
			}
		}
	}

	name := filepath.Base(path)
	candidates := v.cat.ROMsBySHA1[strings.ToLower(sha1hex)]
	if len(candidates) == 0 {
		return nil, Errorf("SHA-1 of the uncompressed version of %q doesn't match any file in the catalog", name)
	}

	expectedName := strings.TrimSuffix(name, filepath.Ext(name)) + ".iso"
	rom := romNamed(candidates, expectedName)
	if rom == nil {
		suggestions := make([]string, 0, len(candidates))
		for _, candidate := range candidates {
			suggestions = append(suggestions, `"`+strings.Replace(candidate.Name, ".iso", ".rvz", 1)+`"`)
		}
		return nil, Errorf("dump file %q found in the catalog, but it should be named %s",
			name, strings.Join(suggestions, " or "))
	}

	v.logger.Info("dump verified correct and complete", "game", rom.Game.Name)
	return rom.Game, nil
}

// reportCueOutcome applies the cue mismatch policy: matching outcomes are
// logged, mismatches either warn or fail depending on Options.
func (v *Verifier) reportCueOutcome(game *catalog.Game, outcome CueOutcome) error {
	switch outcome {
	case CueNotNeeded, CueExact:
		v.logger.Info("dump verified correct and complete", "game", game.Name)
	case CueEssentialsMatch:
		v.logger.Info("dump binaries verified correct and complete, and cue sheet essential structure matches",
			"game", game.Name)
	case CueMismatchNoReference:
		if v.opts.AllowCueMismatches {
			v.logger.Warn("dump binaries verified and complete, but the cue sheet does not match the catalog",
				"game", game.Name)
			return nil
		}
		return Errorf("%q .bin files verified and complete, but the cue sheet does not match the catalog"+
			"\nSupply the original cue sheet with --extra-cue-source so its essential structure can be checked, "+
			"or ignore cue sheet errors with --allow-cue-mismatches", game.Name)
	case CueEssentialsMismatch:
		if v.opts.AllowCueMismatches {
			v.logger.Warn("dump binaries verified and complete, but the cue sheet matches neither the catalog nor the reference sheet",
				"game", game.Name)
			return nil
		}
		return Errorf("%q .bin files verified and complete, but the cue sheet matches neither the catalog nor the essential structure of the reference sheet"+
			"\nYou can choose to ignore cue sheet errors with --allow-cue-mismatches", game.Name)
	}
	return nil
}

// convertToolError turns a tool failure during hashing into a conversion
// error for the dump so batch handling records it per item.
func convertToolError(err error, path string) error {
	return convert.WrapToolFailure(err, path, "failed to hash image payload using DolphinTool")
}
