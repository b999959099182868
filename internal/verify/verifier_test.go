package verify

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dumpcheck/internal/convert"
	"dumpcheck/internal/resultcache"
	"dumpcheck/internal/tools"
)

// toolScript counts invocations and delegates to a scripted body so a test
// can fake the files a tool leaves on disk.
type toolScript struct {
	runs int
	fn   func(args []string, stdout, stderr io.Writer) error
}

func (s *toolScript) Run(ctx context.Context, binary string, args []string, stdout, stderr io.Writer) error {
	s.runs++
	return s.fn(args, stdout, stderr)
}

func flagValue(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func chdPipeline(t *testing.T, binData string) (*toolScript, *toolScript, *convert.Converter) {
	t.Helper()

	chdman := &toolScript{fn: func(args []string, stdout, stderr io.Writer) error {
		// The combined bin/cue lands in the converter's scratch folder; its
		// content only matters to binmerge, which is faked below.
		return os.WriteFile(flagValue(args, "--output"), []byte("FILE \"combined.bin\" BINARY\n"), 0o644)
	}}
	binmerge := &toolScript{fn: func(args []string, stdout, stderr io.Writer) error {
		dest := flagValue(args, "-o")
		basename := args[len(args)-1]
		cue := "FILE \"" + basename + " (Track 1).bin\" BINARY\n" +
			"  TRACK 01 MODE1/2352\n" +
			"    INDEX 01 00:00:00\n"
		if err := os.WriteFile(filepath.Join(dest, basename+".cue"), []byte(cue), 0o644); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dest, basename+" (Track 1).bin"), []byte(binData), 0o644)
	}}

	chdmanClient, err := tools.NewChdman("chdman", tools.WithExecutor(chdman))
	if err != nil {
		t.Fatalf("NewChdman: %v", err)
	}
	binmergeClient, err := tools.NewBinmerge("binmerge", tools.WithExecutor(binmerge))
	if err != nil {
		t.Fatalf("NewBinmerge: %v", err)
	}
	return chdman, binmerge, convert.New(chdmanClient, binmergeClient, nil)
}

func TestVerifyAllCHDEndToEnd(t *testing.T) {
	ctx := context.Background()
	game := "Game (USA)"
	binData := "track one data"
	// The cue sheet the pipeline leaves behind after single-bin collapse and
	// CRLF normalization; the catalog records its hash, so the outcome is a
	// byte-exact cue match.
	finalCue := "FILE \"" + game + ".bin\" BINARY\r\n" +
		"  TRACK 01 MODE1/2352\r\n" +
		"    INDEX 01 00:00:00\r\n"
	cat := buildCatalog(t, "Sony - PlayStation", map[string]map[string]string{
		game: {game + ".cue": finalCue, game + ".bin": binData},
	})

	chdman, binmerge, converter := chdPipeline(t, binData)

	store, err := resultcache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	v := New(cat, converter, nil, store, nil, Options{})

	chdPath := filepath.Join(t.TempDir(), game+".chd")
	if err := os.WriteFile(chdPath, []byte("chd bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := v.VerifyAll(ctx, []string{chdPath})
	if err != nil {
		t.Fatalf("VerifyAll: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Verified) != 1 || result.Verified[0].Name != game {
		t.Fatalf("Verified = %v", result.Verified)
	}
	if chdman.runs != 1 || binmerge.runs != 1 {
		t.Fatalf("tool runs = %d/%d, want 1/1", chdman.runs, binmerge.runs)
	}

	// The second run replays the cached record and never re-extracts.
	result, err = v.VerifyAll(ctx, []string{chdPath})
	if err != nil {
		t.Fatalf("VerifyAll (cached): %v", err)
	}
	if len(result.Errors) != 0 || len(result.Verified) != 1 {
		t.Fatalf("cached run: verified=%v errors=%v", result.Verified, result.Errors)
	}
	if chdman.runs != 1 || binmerge.runs != 1 {
		t.Errorf("tool runs = %d/%d after cached run, want 1/1", chdman.runs, binmerge.runs)
	}
}

func TestVerifyAllCHDCacheInvalidatedByCatalogChange(t *testing.T) {
	ctx := context.Background()
	game := "Game (USA)"
	binData := "track one data"
	finalCue := "FILE \"" + game + ".bin\" BINARY\r\n" +
		"  TRACK 01 MODE1/2352\r\n" +
		"    INDEX 01 00:00:00\r\n"
	cat := buildCatalog(t, "Sony - PlayStation", map[string]map[string]string{
		game: {game + ".cue": finalCue, game + ".bin": binData},
	})

	chdman, _, converter := chdPipeline(t, binData)

	store, err := resultcache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	chdPath := filepath.Join(t.TempDir(), game+".chd")
	if err := os.WriteFile(chdPath, []byte("chd bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := New(cat, converter, nil, store, nil, Options{})
	if result, err := v.VerifyAll(ctx, []string{chdPath}); err != nil || len(result.Errors) != 0 {
		t.Fatalf("seed run: result=%v err=%v", result, err)
	}
	if chdman.runs != 1 {
		t.Fatalf("chdman runs = %d after seed run", chdman.runs)
	}

	// The same dump against a catalog whose bin entry changed: the cached
	// record must not replay, so the extractor runs again and the stale dump
	// now fails verification.
	changed := buildCatalog(t, "Sony - PlayStation", map[string]map[string]string{
		game: {game + ".cue": finalCue, game + ".bin": "revised disc contents"},
	})
	v2 := New(changed, converter, nil, store, nil, Options{})

	result, err := v2.VerifyAll(ctx, []string{chdPath})
	if err != nil {
		t.Fatalf("VerifyAll (changed catalog): %v", err)
	}
	if chdman.runs != 2 {
		t.Errorf("chdman runs = %d, want 2 after cache invalidation", chdman.runs)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Error(), "doesn't match any file in the catalog") {
		t.Errorf("Errors = %v, want a hash mismatch for the stale dump", result.Errors)
	}
}
