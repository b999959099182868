package cuesheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// gdiTrackPattern is the fixed positional grammar of a GDI track line:
// track number, LBA, track type, sector size, quoted filename, disc offset.
var gdiTrackPattern = regexp.MustCompile(
	`^\s*(?P<track_number>[0-9]+)\s+(?P<lba>[0-9]+)\s+(?P<track_type>[0-9]+)\s+(?P<sector_size>[0-9]+)\s+(?P<track_filename>".*?")\s+(?P<disc_offset>[0-9]+)$`)

// TrackBinName returns the Redump-convention name for a track's binary file.
// The track number is zero-padded to two digits once a disc has ten or more
// tracks, matching how Redump names multi-track dumps.
func TrackBinName(gameName string, trackNumber, totalTracks int) string {
	width := 1
	if totalTracks >= 10 {
		width = 2
	}
	return fmt.Sprintf("%s (Track %0*d).bin", gameName, width, trackNumber)
}

// SynthesizeFromGDI reconstructs a cue sheet from GDI track-list text. The
// GDI format does not store pregap information, but the pattern used on
// GD-ROM discs is predictable enough to recreate deterministically:
// identical input always yields byte-identical output. Referenced binaries
// are renamed to the Redump "(Track NN)" convention for gameName, and the
// output uses CRLF line endings as cue sheet consumers expect.
func SynthesizeFromGDI(gdiText, gameName string) (string, error) {
	lines := strings.Split(gdiText, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("track list is empty")
	}

	// The first line only holds the total track count; the per-line track
	// numbers are what actually matter.
	trackLines := lines[1:]
	totalTracks := len(trackLines)

	var cue strings.Builder
	for _, line := range trackLines {
		match := gdiTrackPattern.FindStringSubmatch(line)
		if match == nil {
			return "", fmt.Errorf("track list line does not match the expected format: %s", line)
		}

		trackNumber, _ := strconv.Atoi(match[1])
		lba, _ := strconv.Atoi(match[2])
		trackType, _ := strconv.Atoi(match[3])
		sectorSize, _ := strconv.Atoi(match[4])

		var trackMode string
		switch {
		case trackType == 0:
			trackMode = "AUDIO"
		case trackType == 4 && (sectorSize == 2048 || sectorSize == 2352):
			// A type 4 track with one of these sector sizes could also be a
			// MODE2 track; the track list does not carry enough to tell.
			trackMode = fmt.Sprintf("MODE1/%04d", sectorSize)
		case trackType == 4:
			trackMode = fmt.Sprintf("MODE2/%04d", sectorSize)
		default:
			return "", fmt.Errorf("unexpected track type %d in track list", trackType)
		}

		if trackNumber == 1 {
			if lba != 0 {
				return "", fmt.Errorf("unexpected LBA of first track: %d", lba)
			}
			if totalTracks >= 3 {
				cue.WriteString("REM SINGLE-DENSITY AREA\r\n")
			}
		}
		if trackNumber == 3 {
			if lba != 45000 {
				return "", fmt.Errorf("unexpected LBA of track 3: %d", lba)
			}
			cue.WriteString("REM HIGH-DENSITY AREA\r\n")
		}

		fmt.Fprintf(&cue, "FILE %q BINARY\r\n", TrackBinName(gameName, trackNumber, totalTracks))
		fmt.Fprintf(&cue, "  TRACK %02d %s\r\n", trackNumber, trackMode)

		switch {
		case trackMode == "AUDIO":
			cue.WriteString("    INDEX 00 00:00:00\r\n")
			cue.WriteString("    INDEX 01 00:02:00\r\n")
		case trackNumber == 1 || trackNumber == 3:
			// First track of the single-density or high-density area.
			cue.WriteString("    INDEX 01 00:00:00\r\n")
		case trackNumber == totalTracks:
			// Last track on the disc.
			cue.WriteString("    INDEX 00 00:00:00\r\n")
			cue.WriteString("    INDEX 01 00:03:00\r\n")
		default:
			// Data track in the middle of an area. Plausible, but not yet
			// checked against a real disc that has one.
			cue.WriteString("    INDEX 00 00:00:00\r\n")
			cue.WriteString("    INDEX 01 00:02:00\r\n")
		}
	}

	return cue.String(), nil
}
