// Package cuesheet works with cue sheet text: reducing a sheet to the
// essential commands a converter can reproduce, decoding sheet bytes into
// text, synthesizing a cue sheet from a GD-ROM track list, and locating
// reference sheets supplied by the user.
//
// Compressed dump formats discard the original cue sheet, so the sheets this
// tool compares are reconstructions. Keeping the lossy parts (free-text
// metadata, whitespace) out of the comparison is what makes verification of
// those reconstructions possible.
package cuesheet
