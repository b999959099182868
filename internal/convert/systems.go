package convert

import "strings"

type platform int

const (
	platformUnknown platform = iota
	platformPlayStation
	platformPlayStation2
	platformSaturn
)

// platformAliases maps catalog system names, and the short names Redump uses
// in its site URLs, to the platforms with known cue normalization rules.
// Matching is case-insensitive.
var platformAliases = map[string]platform{
	"sony - playstation":   platformPlayStation,
	"psx":                  platformPlayStation,
	"sony - playstation 2": platformPlayStation2,
	"ps2":                  platformPlayStation2,
	"sega - saturn":        platformSaturn,
	"ss":                   platformSaturn,
}

// gdROMSystems are the systems whose dumps live on GD-ROM media. chdman can
// only extract those correctly to gdi format, so conversion takes the
// bin/gdi route and reconstructs the cue sheet afterwards.
var gdROMSystems = map[string]struct{}{
	"sega - dreamcast":                          {},
	"dc":                                        {},
	"arcade - sega - chihiro":                   {},
	"chihiro":                                   {},
	"arcade - sega - naomi":                     {},
	"naomi":                                     {},
	"arcade - sega - naomi 2":                   {},
	"naomi2":                                    {},
	"arcade - namco - sega - nintendo - triforce": {},
	"trf": {},
}

func platformFor(system string) platform {
	return platformAliases[strings.ToLower(strings.TrimSpace(system))]
}

// UsesGDROM reports whether the named system stores its games on GD-ROM
// media.
func UsesGDROM(system string) bool {
	_, ok := gdROMSystems[strings.ToLower(strings.TrimSpace(system))]
	return ok
}
