package verify

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"dumpcheck/internal/catalog"
	"dumpcheck/internal/convert"
	"dumpcheck/internal/dump"
)

// BatchResult collects the outcome of verifying a set of inputs. Per-item
// failures land in Errors; they never stop the remaining inputs from being
// attempted.
type BatchResult struct {
	Verified []*catalog.Game
	Errors   []error
}

// VerifyAll verifies every given file or folder. Folders are recursed with
// symlinks followed; files inside them with unsupported extensions are
// skipped, while an explicitly named unsupported file is an error. Only
// conversion and verification failures are collected; anything else is a
// programming-error signal and propagates immediately.
func (v *Verifier) VerifyAll(ctx context.Context, paths []string) (*BatchResult, error) {
	result := &BatchResult{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			result.Errors = append(result.Errors, Errorf("cannot access %q: %v", path, err))
			continue
		}
		if info.IsDir() {
			if err := v.verifyFolderTree(ctx, path, result); err != nil {
				return nil, err
			}
			continue
		}
		if err := v.verifyOne(ctx, path, true, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (v *Verifier) verifyFolderTree(ctx context.Context, dir string, result *BatchResult) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Errors = append(result.Errors, Errorf("cannot read folder %q: %v", dir, err))
		return nil
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, entry.Name())
		// Stat rather than the entry type so symlinks are followed.
		info, err := os.Stat(path)
		if err != nil {
			result.Errors = append(result.Errors, Errorf("cannot access %q: %v", path, err))
			continue
		}
		if info.IsDir() {
			if err := v.verifyFolderTree(ctx, path, result); err != nil {
				return err
			}
			continue
		}
		if err := v.verifyOne(ctx, path, false, result); err != nil {
			return err
		}
	}
	return nil
}

// verifyOne dispatches a single file on its container format. Returned
// errors are the propagating kind; expected per-item failures are recorded
// in result.
func (v *Verifier) verifyOne(ctx context.Context, path string, explicit bool, result *BatchResult) error {
	format, ok := dump.DetectFormat(path)
	if !ok {
		if explicit {
			result.Errors = append(result.Errors,
				Errorf("dumpcheck doesn't know how to handle %q dumps", filepath.Ext(path)))
		}
		return nil
	}

	var (
		game *catalog.Game
		err  error
	)
	switch format {
	case dump.FormatCHD:
		game, err = v.verifyCHD(ctx, path)
	case dump.FormatRVZ:
		game, err = v.verifyRVZ(ctx, path)
	}

	if err != nil {
		var convErr *convert.Error
		var verErr *Error
		if errors.As(err, &convErr) || errors.As(err, &verErr) {
			result.Errors = append(result.Errors, err)
			return nil
		}
		return err
	}

	result.Verified = append(result.Verified, game)
	return nil
}
