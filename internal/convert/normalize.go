package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"dumpcheck/internal/cuesheet"
)

// saturnCueHeader is the catalog line most Saturn cue sheets in the catalogs
// start with. Prepending it is an empirically common convention, not a
// universal one, so the result is a best-effort match.
const saturnCueHeader = "CATALOG 0000000000000"

// NormalizeDumpFolder reshapes a freshly split bin/cue dump to match Redump
// conventions for the named system. It reports whether normalization rules
// for that system are known; callers should lower their expectations for
// cue sheet matching when they are not.
func NormalizeDumpFolder(cuePath, system string) (bool, error) {
	if err := collapseSingleBin(cuePath); err != nil {
		return false, err
	}
	if err := collapseISO(cuePath); err != nil {
		return false, err
	}

	switch platformFor(system) {
	case platformPlayStation, platformPlayStation2:
		// The split output already matches the catalogs for these systems.
		return true, nil
	case platformSaturn:
		if err := prependCueHeader(cuePath, saturnCueHeader); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}

// collapseSingleBin renames "<game> (Track 1).bin" to "<game>.bin" when the
// dump produced exactly one track binary, and rewrites the cue sheet's FILE
// reference to match. Catalogs only use track-numbered names for dumps with
// several binaries.
func collapseSingleBin(cuePath string) error {
	dir := filepath.Dir(cuePath)
	game := stem(cuePath)

	trackBins, err := filesWithAffixes(dir, game+" (Track ", ".bin")
	if err != nil {
		return err
	}
	if len(trackBins) != 1 {
		return nil
	}

	originalName := game + " (Track 1).bin"
	collapsedName := game + ".bin"
	if trackBins[0] != originalName {
		return errorf(filepath.Join(dir, trackBins[0]), "sole track binary does not match the expected filename pattern")
	}
	if err := os.Rename(filepath.Join(dir, originalName), filepath.Join(dir, collapsedName)); err != nil {
		return errorf(cuePath, "rename sole track binary: %v", err)
	}

	text, err := os.ReadFile(cuePath)
	if err != nil {
		return errorf(cuePath, "read cue sheet: %v", err)
	}
	rewritten := strings.ReplaceAll(string(text),
		fmt.Sprintf("FILE %q", originalName),
		fmt.Sprintf("FILE %q", collapsedName))
	return writeCueText(cuePath, rewritten)
}

// collapseISO converts the dump to a bare .iso image when the cue sheet
// describes exactly one MODE1/2048 track starting at INDEX 01 00:00:00.
// Such an image is plain ISO-9660 and needs no cue sheet at all.
func collapseISO(cuePath string) error {
	game := stem(cuePath)
	binName := game + ".bin"

	text, err := os.ReadFile(cuePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errorf(cuePath, "read cue sheet: %v", err)
	}

	isoCompatible := regexp.MustCompile(
		`^\s*FILE\s+"` + regexp.QuoteMeta(binName) + `"\s*BINARY\s+TRACK 01 MODE1/2048\s+INDEX 01 00:00:00\s*$`)
	if !isoCompatible.MatchString(string(text)) {
		return nil
	}

	dir := filepath.Dir(cuePath)
	if err := os.Rename(filepath.Join(dir, binName), filepath.Join(dir, game+".iso")); err != nil {
		return errorf(cuePath, "rename iso-compatible binary: %v", err)
	}
	if err := os.Remove(cuePath); err != nil {
		return errorf(cuePath, "remove redundant cue sheet: %v", err)
	}
	return nil
}

func prependCueHeader(cuePath, header string) error {
	text, err := os.ReadFile(cuePath)
	if err != nil {
		if os.IsNotExist(err) {
			// Collapsed to a bare image; there is no cue sheet to edit.
			return nil
		}
		return errorf(cuePath, "read cue sheet: %v", err)
	}
	return writeCueText(cuePath, header+"\r\n"+string(text))
}

// NormalizeGDIDump renames chdman's gdi track binaries to Redump names,
// reconstructs the cue sheet the catalogs expect, and discards the gdi file.
func NormalizeGDIDump(gdiPath string) error {
	dir := filepath.Dir(gdiPath)
	game := stem(gdiPath)

	binNames, err := filesWithAffixes(dir, game, ".bin")
	if err != nil {
		return err
	}
	rawNames, err := filesWithAffixes(dir, game, ".raw")
	if err != nil {
		return err
	}
	trackFiles := append(binNames, rawNames...)

	trackNumberPattern := regexp.MustCompile(`^` + regexp.QuoteMeta(game) + `(?P<track_number>[0-9]+)\.(?:bin|raw)$`)
	for _, name := range trackFiles {
		match := trackNumberPattern.FindStringSubmatch(name)
		if match == nil {
			return errorf(filepath.Join(dir, name), "track binary does not match the expected filename pattern")
		}
		trackNumber, _ := strconv.Atoi(match[1])
		redumpName := cuesheet.TrackBinName(game, trackNumber, len(trackFiles))
		if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, redumpName)); err != nil {
			return errorf(filepath.Join(dir, name), "rename track binary: %v", err)
		}
	}

	gdiText, err := os.ReadFile(gdiPath)
	if err != nil {
		return errorf(gdiPath, "read track list: %v", err)
	}
	cueText, err := cuesheet.SynthesizeFromGDI(string(gdiText), game)
	if err != nil {
		return errorf(gdiPath, "reconstruct cue sheet: %v", err)
	}

	cuePath := strings.TrimSuffix(gdiPath, filepath.Ext(gdiPath)) + ".cue"
	if err := os.WriteFile(cuePath, []byte(cueText), 0o644); err != nil {
		return errorf(cuePath, "write cue sheet: %v", err)
	}
	if err := os.Remove(gdiPath); err != nil {
		return errorf(gdiPath, "remove track list: %v", err)
	}
	return nil
}

// writeCueText persists cue text with the CRLF line endings cue sheet
// consumers on the target systems expect.
func writeCueText(path, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errorf(path, "write cue sheet: %v", err)
	}
	return nil
}

func filesWithAffixes(dir, prefix, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errorf(dir, "read dump folder: %v", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	return names, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
