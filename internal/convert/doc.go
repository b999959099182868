// Package convert turns compressed CHD dumps into normalized Redump-style
// bin/cue folders.
//
// chdman does the actual extraction and binmerge the track splitting; this
// package orchestrates them and then reshapes the result to match Redump
// naming conventions: single-track dumps lose their "(Track 1)" suffix,
// pure data discs become plain .iso images, GD-ROM dumps get a cue sheet
// reconstructed from chdman's gdi output, and a few systems receive
// system-specific cue sheet edits.
package convert
