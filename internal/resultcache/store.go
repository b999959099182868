package resultcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"dumpcheck/internal/catalog"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the cache to adopt the new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages result persistence backed by SQLite. One store is opened per
// run and passed to the verifier; a file lock serializes access across
// concurrent processes.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// dumpRecord is the cached payload for a CHD verification, mirroring the
// catalog's view of the matched game at caching time.
type dumpRecord struct {
	CueOutcome string      `json:"cue_verification_result"`
	Name       string      `json:"name"`
	ROMs       []romRecord `json:"roms"`
}

type romRecord struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	SHA1 string `json:"sha1"`
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection and releases the cache lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: cache has version %d, expected %d (run 'dumpcheck cache clear')",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// StoreDump upserts a CHD verification result for path.
func (s *Store) StoreDump(ctx context.Context, path string, game *catalog.Game, cueOutcome string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat dump: %w", err)
	}

	record := dumpRecord{CueOutcome: cueOutcome, Name: game.Name}
	for _, rom := range game.ROMs {
		record.ROMs = append(record.ROMs, romRecord{Name: rom.Name, Size: rom.Size, SHA1: rom.SHA1})
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal cache record: %w", err)
	}

	return s.upsert(ctx, filepath.Base(path), info.Size(), info.ModTime().UnixNano(), string(data))
}

// LookupDump fetches a cached CHD verification result for path. A hit
// requires the live file's size and modification time to match the record,
// and the record to replay cleanly against the current catalog; anything
// else is reported as a miss.
func (s *Store) LookupDump(ctx context.Context, path string, cat *catalog.Catalog) (*catalog.Game, string, bool, error) {
	data, ok, err := s.lookupRaw(ctx, path)
	if err != nil || !ok {
		return nil, "", false, err
	}

	var record dumpRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		// Written by an incompatible version; treat as absent.
		return nil, "", false, nil
	}

	game := replay(record, cat)
	if game == nil {
		return nil, "", false, nil
	}
	return game, record.CueOutcome, true, nil
}

// StoreImageSHA1 upserts the payload hash of a hashed-image dump (RVZ).
func (s *Store) StoreImageSHA1(ctx context.Context, path, sha1 string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat dump: %w", err)
	}
	return s.upsert(ctx, filepath.Base(path), info.Size(), info.ModTime().UnixNano(), sha1)
}

// LookupImageSHA1 fetches the cached payload hash for path. Matching against
// the catalog is cheap, so only the hash is cached and matching reruns every
// time.
func (s *Store) LookupImageSHA1(ctx context.Context, path string) (string, bool, error) {
	return s.lookupRaw(ctx, path)
}

// Stats reports the number of cached records.
func (s *Store) Stats(ctx context.Context) (int, error) {
	var entries int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache").Scan(&entries); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return entries, nil
}

// Clear removes every cached record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func (s *Store) upsert(ctx context.Context, name string, size, mtime int64, data string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache (name, size, time, data) VALUES (?, ?, ?, ?)",
		name, size, mtime, data)
	if err != nil {
		return fmt.Errorf("upsert cache record: %w", err)
	}
	return nil
}

func (s *Store) lookupRaw(ctx context.Context, path string) (string, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false, fmt.Errorf("stat dump: %w", err)
	}

	var (
		size  int64
		mtime int64
		data  string
	)
	row := s.db.QueryRowContext(ctx, "SELECT size, time, data FROM cache WHERE name = ?", filepath.Base(path))
	if err := row.Scan(&size, &mtime, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read cache record: %w", err)
	}

	if size != info.Size() || mtime != info.ModTime().UnixNano() {
		return "", false, nil
	}
	return data, true, nil
}

// replay re-resolves a cached record against the live catalog. The cached
// game must still exist under the same name with an identical ROM set;
// any discrepancy invalidates the record.
func replay(record dumpRecord, cat *catalog.Catalog) *catalog.Game {
	game := cat.GameByName(record.Name)
	if game == nil {
		return nil
	}
	if len(record.ROMs) != len(game.ROMs) {
		return nil
	}
	for _, cached := range record.ROMs {
		var live *catalog.ROM
		for _, rom := range game.ROMs {
			if rom.Name == cached.Name {
				live = rom
				break
			}
		}
		if live == nil || live.Size != cached.Size || live.SHA1 != cached.SHA1 {
			return nil
		}
	}
	return game
}
