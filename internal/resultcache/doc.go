// Package resultcache persists verification results in SQLite so unchanged
// dump files skip the expensive extract-and-hash cycle on later runs.
//
// A record is keyed by the dump file's basename and pinned to its size and
// modification time; either changing makes the record invisible. Records are
// additionally replayed against the live catalog before reuse, because the
// catalog may have changed since the result was cached: a cached result only
// stands while the catalog still describes an identical game.
//
// The store is treated as disposable. Schema changes bump schemaVersion and
// users clear the cache to adopt the new schema.
package resultcache
