// Package dump enumerates the compressed dump container formats this tool
// understands.
package dump

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported dump container.
type Format int

const (
	// FormatCHD is a MAME compressed hunks of data image of a CD.
	FormatCHD Format = iota
	// FormatRVZ is a Dolphin-compressed GameCube/Wii disc image.
	FormatRVZ
)

// String returns the conventional file extension for the format.
func (f Format) String() string {
	switch f {
	case FormatCHD:
		return "chd"
	case FormatRVZ:
		return "rvz"
	default:
		return "unknown"
	}
}

// DetectFormat classifies path by extension. ok is false for anything this
// tool cannot verify.
func DetectFormat(path string) (format Format, ok bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".chd":
		return FormatCHD, true
	case ".rvz":
		return FormatRVZ, true
	default:
		return 0, false
	}
}
