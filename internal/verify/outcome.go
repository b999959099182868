package verify

// CueOutcome describes how a dump's reconstructed cue sheet compared to the
// catalog. Values are ordered from least to most concerning; whether a
// non-exact outcome is fatal is the caller's policy decision.
type CueOutcome int

const (
	// CueNotNeeded means the matched game has no cue sheet at all.
	CueNotNeeded CueOutcome = iota
	// CueExact means the reconstructed sheet byte-matches the catalog.
	CueExact
	// CueEssentialsMatch means the sheet differs from the catalog but its
	// essential structure matches a trusted reference sheet.
	CueEssentialsMatch
	// CueMismatchNoReference means the sheet differs from the catalog and no
	// reference was available to check its structure against.
	CueMismatchNoReference
	// CueEssentialsMismatch means the sheet's essential structure differs
	// from a trusted reference sheet.
	CueEssentialsMismatch
)

var cueOutcomeNames = map[CueOutcome]string{
	CueNotNeeded:           "not_needed",
	CueExact:               "exact",
	CueEssentialsMatch:     "essentials_match",
	CueMismatchNoReference: "mismatch_no_reference",
	CueEssentialsMismatch:  "essentials_mismatch",
}

func (o CueOutcome) String() string {
	if name, ok := cueOutcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseCueOutcome maps a stored outcome name back to its value. ok is false
// for names written by incompatible versions.
func ParseCueOutcome(name string) (CueOutcome, bool) {
	for outcome, candidate := range cueOutcomeNames {
		if candidate == name {
			return outcome, true
		}
	}
	return 0, false
}
