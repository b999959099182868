package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError reports a malformed Datfile. It is fatal: without a valid
// catalog no verification can happen, so callers abort the run.
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string { return e.msg }

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{msg: fmt.Sprintf(format, args...)}
}

// ROM describes one expected file of a game. Fields are set during parsing
// and never mutated afterwards.
type ROM struct {
	Name string
	Size int64
	// SHA1 is the lowercase hex digest of the file contents.
	SHA1 string
	// Game points back at the owning game. It is used for grouping checks
	// and error messages only.
	Game *Game
}

// Game is a catalog entry owning an ordered set of ROMs. A dump is correct
// when it contains exactly these files.
type Game struct {
	Name string
	ROMs []*ROM
}

// Catalog is a parsed Datfile: the system it describes, its games in
// document order, and an index from SHA-1 to every ROM carrying that digest.
// Identical content shared across games means a digest can map to several
// ROMs, so the index appends and never replaces.
type Catalog struct {
	System     string
	Games      []*Game
	ROMsBySHA1 map[string][]*ROM
}

// GameByName returns the game with the given name, or nil.
func (c *Catalog) GameByName(name string) *Game {
	for _, game := range c.Games {
		if game.Name == name {
			return game
		}
	}
	return nil
}

// Load reads and parses the Datfile at path.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open datfile: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse consumes a Datfile document from r. The expected shape is
// datafile/header/name for the system declaration followed by
// datafile/game and datafile/game/rom elements.
func Parse(r io.Reader) (*Catalog, error) {
	decoder := xml.NewDecoder(r)

	var (
		cat        *Catalog
		game       *Game
		path       []string
		systemName strings.Builder
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseErrorf("malformed datfile: %v", err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			path = append(path, tok.Name.Local)
			switch {
			case pathIs(path, "datafile", "game"):
				if game != nil {
					return nil, parseErrorf("found a <game> within another <game>")
				}
				if cat == nil {
					return nil, parseErrorf("found a <game> before the <header> declared a system name")
				}
				name, err := requiredAttr(tok, "name")
				if err != nil {
					return nil, err
				}
				game = &Game{Name: name}
			case tok.Name.Local == "game" && game != nil:
				return nil, parseErrorf("found a <game> within another <game>")
			case pathIs(path, "datafile", "game", "rom"):
				rom, err := parseROM(tok, game)
				if err != nil {
					return nil, err
				}
				game.ROMs = append(game.ROMs, rom)
				cat.ROMsBySHA1[rom.SHA1] = append(cat.ROMsBySHA1[rom.SHA1], rom)
			}
		case xml.EndElement:
			if pathIs(path, "datafile", "game") {
				cat.Games = append(cat.Games, game)
				game = nil
			}
			if pathIs(path, "datafile", "header", "name") && cat == nil {
				if system := strings.TrimSpace(systemName.String()); system != "" {
					cat = &Catalog{System: system, ROMsBySHA1: map[string][]*ROM{}}
				}
			}
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		case xml.CharData:
			if pathIs(path, "datafile", "header", "name") && cat == nil {
				systemName.Write(tok)
			}
		}
	}

	if cat == nil {
		return nil, parseErrorf("datfile never declared a system name in its <header>")
	}
	return cat, nil
}

func parseROM(el xml.StartElement, game *Game) (*ROM, error) {
	if game == nil {
		return nil, parseErrorf("found a <rom> that was not within a <game>")
	}

	name, err := requiredAttr(el, "name")
	if err != nil {
		return nil, err
	}

	sizeAttr, err := requiredAttr(el, "size")
	if err != nil {
		return nil, err
	}
	size, convErr := strconv.ParseInt(sizeAttr, 10, 64)
	if convErr != nil || size < 0 {
		return nil, parseErrorf("<rom> has a size attribute that is not a non-negative integer: %q", sizeAttr)
	}

	sha1, err := requiredAttr(el, "sha1")
	if err != nil {
		return nil, err
	}
	sha1 = strings.ToLower(sha1)
	if !isSHA1Hex(sha1) {
		return nil, parseErrorf("<rom> has a sha1 attribute that is not 40 hex characters: %q", sha1)
	}

	return &ROM{Name: name, Size: size, SHA1: sha1, Game: game}, nil
}

func requiredAttr(el xml.StartElement, name string) (string, error) {
	for _, attr := range el.Attr {
		if attr.Name.Local == name && attr.Value != "" {
			return attr.Value, nil
		}
	}
	return "", parseErrorf("found a <%s> without a %s attribute", el.Name.Local, name)
}

func isSHA1Hex(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func pathIs(path []string, want ...string) bool {
	if len(path) != len(want) {
		return false
	}
	for i := range want {
		if path[i] != want[i] {
			return false
		}
	}
	return true
}
