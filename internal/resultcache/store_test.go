package resultcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dumpcheck/internal/catalog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache", "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testCatalog() *catalog.Catalog {
	game := &catalog.Game{Name: "Game (USA)"}
	game.ROMs = []*catalog.ROM{
		{Name: "Game (USA).cue", Size: 98, SHA1: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Game: game},
		{Name: "Game (USA).bin", Size: 1024, SHA1: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Game: game},
	}
	cat := &catalog.Catalog{System: "Sony - PlayStation", Games: []*catalog.Game{game}}
	cat.ROMsBySHA1 = make(map[string][]*catalog.ROM)
	for _, rom := range game.ROMs {
		cat.ROMsBySHA1[rom.SHA1] = append(cat.ROMsBySHA1[rom.SHA1], rom)
	}
	return cat
}

func writeDumpFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("chd payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStoreDumpRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	cat := testCatalog()
	dumpPath := writeDumpFile(t, t.TempDir(), "Game (USA).chd")

	if err := store.StoreDump(ctx, dumpPath, cat.Games[0], "exact"); err != nil {
		t.Fatalf("StoreDump: %v", err)
	}

	game, outcome, ok, err := store.LookupDump(ctx, dumpPath, cat)
	if err != nil {
		t.Fatalf("LookupDump: %v", err)
	}
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if game != cat.Games[0] {
		t.Errorf("replayed game is not the live catalog entry")
	}
	if outcome != "exact" {
		t.Errorf("outcome = %q", outcome)
	}
}

func TestLookupDumpMissesWhenFileChanges(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	cat := testCatalog()
	dir := t.TempDir()
	dumpPath := writeDumpFile(t, dir, "Game (USA).chd")

	if err := store.StoreDump(ctx, dumpPath, cat.Games[0], "exact"); err != nil {
		t.Fatalf("StoreDump: %v", err)
	}

	// Same size, different mtime.
	newTime := time.Now().Add(2 * time.Hour)
	if err := os.Chtimes(dumpPath, newTime, newTime); err != nil {
		t.Fatal(err)
	}
	if _, _, ok, err := store.LookupDump(ctx, dumpPath, cat); err != nil {
		t.Fatalf("LookupDump: %v", err)
	} else if ok {
		t.Errorf("modified file should miss the cache")
	}

	// Different size.
	if err := os.WriteFile(dumpPath, []byte("a different, longer chd payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, ok, err := store.LookupDump(ctx, dumpPath, cat); err != nil {
		t.Fatalf("LookupDump: %v", err)
	} else if ok {
		t.Errorf("resized file should miss the cache")
	}
}

func TestLookupDumpMissesWhenCatalogChanges(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	cat := testCatalog()
	dumpPath := writeDumpFile(t, t.TempDir(), "Game (USA).chd")

	if err := store.StoreDump(ctx, dumpPath, cat.Games[0], "exact"); err != nil {
		t.Fatalf("StoreDump: %v", err)
	}

	t.Run("game removed", func(t *testing.T) {
		empty := &catalog.Catalog{System: cat.System, ROMsBySHA1: map[string][]*catalog.ROM{}}
		if _, _, ok, err := store.LookupDump(ctx, dumpPath, empty); err != nil {
			t.Fatalf("LookupDump: %v", err)
		} else if ok {
			t.Errorf("record should not replay against a catalog without the game")
		}
	})

	t.Run("rom hash changed", func(t *testing.T) {
		changed := testCatalog()
		changed.Games[0].ROMs[1].SHA1 = "cccccccccccccccccccccccccccccccccccccccc"
		if _, _, ok, err := store.LookupDump(ctx, dumpPath, changed); err != nil {
			t.Fatalf("LookupDump: %v", err)
		} else if ok {
			t.Errorf("record should not replay after a catalog hash change")
		}
	})

	t.Run("rom added to game", func(t *testing.T) {
		grown := testCatalog()
		grown.Games[0].ROMs = append(grown.Games[0].ROMs,
			&catalog.ROM{Name: "Extra.bin", Size: 1, SHA1: "dddddddddddddddddddddddddddddddddddddddd"})
		if _, _, ok, err := store.LookupDump(ctx, dumpPath, grown); err != nil {
			t.Fatalf("LookupDump: %v", err)
		} else if ok {
			t.Errorf("record should not replay after the game gained a file")
		}
	})
}

func TestImageSHA1RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	dumpPath := writeDumpFile(t, t.TempDir(), "Game (USA).rvz")

	const hash = "0123456789abcdef0123456789abcdef01234567"
	if err := store.StoreImageSHA1(ctx, dumpPath, hash); err != nil {
		t.Fatalf("StoreImageSHA1: %v", err)
	}

	got, ok, err := store.LookupImageSHA1(ctx, dumpPath)
	if err != nil {
		t.Fatalf("LookupImageSHA1: %v", err)
	}
	if !ok || got != hash {
		t.Errorf("got (%q, %v), want cached hash", got, ok)
	}
}

func TestLookupMissesForUnknownDump(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	dumpPath := writeDumpFile(t, t.TempDir(), "Never Stored.chd")

	if _, _, ok, err := store.LookupDump(ctx, dumpPath, testCatalog()); err != nil {
		t.Fatalf("LookupDump: %v", err)
	} else if ok {
		t.Errorf("lookup of an unstored dump should miss")
	}
}

func TestStoreDumpUpserts(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	cat := testCatalog()
	dumpPath := writeDumpFile(t, t.TempDir(), "Game (USA).chd")

	if err := store.StoreDump(ctx, dumpPath, cat.Games[0], "mismatch_no_reference"); err != nil {
		t.Fatalf("StoreDump: %v", err)
	}
	if err := store.StoreDump(ctx, dumpPath, cat.Games[0], "exact"); err != nil {
		t.Fatalf("StoreDump: %v", err)
	}

	entries, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if entries != 1 {
		t.Errorf("entries = %d, want 1 after upsert", entries)
	}

	_, outcome, ok, err := store.LookupDump(ctx, dumpPath, cat)
	if err != nil || !ok {
		t.Fatalf("LookupDump: ok=%v err=%v", ok, err)
	}
	if outcome != "exact" {
		t.Errorf("outcome = %q, want the newer record", outcome)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	cat := testCatalog()
	dumpPath := writeDumpFile(t, t.TempDir(), "Game (USA).chd")

	if err := store.StoreDump(ctx, dumpPath, cat.Games[0], "exact"); err != nil {
		t.Fatalf("StoreDump: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	entries, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if entries != 0 {
		t.Errorf("entries = %d after clear", entries)
	}
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	cat := testCatalog()
	dumpPath := writeDumpFile(t, t.TempDir(), "Game (USA).chd")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.StoreDump(ctx, dumpPath, cat.Games[0], "exact"); err != nil {
		t.Fatalf("StoreDump: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if _, _, ok, err := reopened.LookupDump(ctx, dumpPath, cat); err != nil {
		t.Fatalf("LookupDump: %v", err)
	} else if !ok {
		t.Errorf("record lost across reopen")
	}
}
