package verify

import (
	"os"
	"path/filepath"
	"strings"

	"dumpcheck/internal/catalog"
	"dumpcheck/internal/cuesheet"
)

// FolderResult is the outcome of verifying one realized dump folder.
type FolderResult struct {
	Game       *catalog.Game
	CueOutcome CueOutcome
}

// VerifyFolder checks that folder is a correct, complete copy of exactly one
// catalog game. extraCueSource optionally names a file, directory, or zip of
// reference cue sheets used to reconcile a sheet that does not byte-match
// the catalog; pass "" when none is available.
func VerifyFolder(folder string, cat *catalog.Catalog, extraCueSource string) (*FolderResult, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, Errorf("cannot read dump folder %q: %v", folder, err)
	}

	var verified []*catalog.ROM
	cueVerified := false

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(folder, name)
		info, err := os.Stat(path)
		if err != nil {
			return nil, Errorf("cannot inspect dump file %q: %v", name, err)
		}
		if !info.Mode().IsRegular() {
			return nil, Errorf("unexpected non-file in dump folder: %s", name)
		}

		isCue := strings.EqualFold(filepath.Ext(name), ".cue")

		sha1hex, err := fileSHA1(path)
		if err != nil {
			return nil, Errorf("cannot hash dump file %q: %v", name, err)
		}

		candidates := cat.ROMsBySHA1[sha1hex]
		if len(candidates) == 0 {
			if isCue {
				// Reconstructed cue sheets legitimately may not byte-match
				// the catalog; reconciliation below decides what that means.
				cueVerified = false
				continue
			}
			return nil, Errorf("SHA-1 of dump file %q doesn't match any file in the catalog", name)
		}

		rom := romNamed(candidates, name)
		if rom == nil {
			return nil, Errorf("dump file %q found in the catalog, but it should be named %s",
				name, acceptableNames(candidates))
		}
		if rom.Size != info.Size() {
			return nil, Errorf("dump file %q found in the catalog, but it has the wrong size", name)
		}

		if len(verified) > 0 && rom.Game != verified[0].Game {
			return nil, Errorf("dump file %q is from game %q, but at least one other file in this dump is from %q",
				rom.Name, rom.Game.Name, verified[0].Game.Name)
		}

		if isCue {
			cueVerified = true
		}
		verified = append(verified, rom)
	}

	if len(verified) == 0 {
		return nil, Errorf("no game files found in dump folder")
	}
	game := verified[0].Game

	for _, rom := range game.ROMs {
		if containsROM(verified, rom) {
			continue
		}
		// A missing cue sheet is exempt: reconstruction is best-effort and
		// its absence is judged by the reconciliation below instead.
		if isCueName(rom.Name) {
			continue
		}
		return nil, Errorf("game file %q is missing in dump", rom.Name)
	}

	// Unreachable given the single-game check above, but worth keeping as a
	// sanity check.
	for _, rom := range verified {
		if !containsROM(game.ROMs, rom) {
			return nil, Errorf("dump has extra file %q that isn't associated with the game %q in the catalog",
				rom.Name, game.Name)
		}
	}

	if cueVerified {
		return &FolderResult{Game: game, CueOutcome: CueExact}, nil
	}

	cueROM := gameCueROM(game)
	if cueROM == nil {
		return &FolderResult{Game: game, CueOutcome: CueNotNeeded}, nil
	}

	outcome, err := reconcileCue(folder, cueROM, extraCueSource)
	if err != nil {
		return nil, err
	}
	return &FolderResult{Game: game, CueOutcome: outcome}, nil
}

// reconcileCue compares the generated cue sheet's essential structure with a
// reference sheet from extraCueSource. The reference must itself match the
// catalog hash; a reference that does not is untrustworthy and fails hard.
func reconcileCue(folder string, cueROM *catalog.ROM, extraCueSource string) (CueOutcome, error) {
	if extraCueSource == "" {
		return CueMismatchNoReference, nil
	}

	referenceBytes, found, err := cuesheet.FindReference(extraCueSource, cueROM.Name)
	if err != nil {
		return 0, Errorf("%v", err)
	}
	if !found {
		// A reference collection without this game's sheet is fine; the
		// result just can't be upgraded past a plain mismatch.
		return CueMismatchNoReference, nil
	}

	if bytesSHA1(referenceBytes) != cueROM.SHA1 {
		return 0, Errorf("provided reference cue sheet %q doesn't match the catalog", cueROM.Name)
	}

	generatedBytes, err := os.ReadFile(filepath.Join(folder, cueROM.Name))
	if err != nil {
		return 0, Errorf("generated cue sheet %q not found in dump: %v", cueROM.Name, err)
	}

	generatedText, err := cuesheet.DecodeText(generatedBytes)
	if err != nil {
		return 0, Errorf("failed to decode generated cue sheet %q as UTF-8", cueROM.Name)
	}
	referenceText, err := cuesheet.DecodeText(referenceBytes)
	if err != nil {
		return 0, Errorf("failed to decode provided cue sheet %q as UTF-8", cueROM.Name)
	}

	if cuesheet.Essentials(generatedText) == cuesheet.Essentials(referenceText) {
		return CueEssentialsMatch, nil
	}
	return CueEssentialsMismatch, nil
}

func romNamed(roms []*catalog.ROM, name string) *catalog.ROM {
	for _, rom := range roms {
		if rom.Name == name {
			return rom
		}
	}
	return nil
}

func acceptableNames(roms []*catalog.ROM) string {
	names := make([]string, 0, len(roms))
	for _, rom := range roms {
		names = append(names, `"`+rom.Name+`"`)
	}
	return strings.Join(names, " or ")
}

func containsROM(roms []*catalog.ROM, target *catalog.ROM) bool {
	for _, rom := range roms {
		if rom == target {
			return true
		}
	}
	return false
}

func isCueName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".cue")
}

func gameCueROM(game *catalog.Game) *catalog.ROM {
	for _, rom := range game.ROMs {
		if isCueName(rom.Name) {
			return rom
		}
	}
	return nil
}
