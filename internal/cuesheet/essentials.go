package cuesheet

import "strings"

// supportedCommands are the cue commands chdman's cue writer emits. Lines
// starting with anything else (REM, CATALOG, free text) cannot be
// reconstructed from a compressed dump and are excluded from comparison.
var supportedCommands = map[string]struct{}{
	"FILE":    {},
	"TRACK":   {},
	"PREGAP":  {},
	"INDEX":   {},
	"POSTGAP": {},
}

// Essentials reduces cue text to its structural content: lines are trimmed
// and only those whose leading keyword is a supported command survive.
// Two sheets with equal essentials describe the same binary layout even if
// their metadata or indentation differ.
func Essentials(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		keyword, _, _ := strings.Cut(line, " ")
		if _, ok := supportedCommands[strings.ToUpper(keyword)]; ok {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
