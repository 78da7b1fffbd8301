// Package metadatacache provides a local, persistent, TTL-based cache for
// movie and TV metadata lookup results.
//
// The cache avoids repeated remote lookups for queries that were already
// answered. Queries are keyed by normalized (media type, title, year)
// tuples, entries expire after a fixed TTL, and the whole cache is held in
// memory and flushed to a single JSON document only when it was mutated and
// the owner calls Close.
//
// # Storage
//
// The cache is stored as one human-readable JSON document (default:
// ~/.metacache/metadata_cache.json):
//
//	{
//	  "version": "1.0",
//	  "updated": "<RFC 3339>",
//	  "entries": { "movie|the matrix|1999": { ..., "timestamp": "<RFC 3339>" } }
//	}
//
// The document is rewritten wholesale on save; the in-memory map is the
// source of truth while the process is alive.
//
// # Failure semantics
//
// The cache is purely an optimization layer. Load, save, and delete
// failures are logged and swallowed, degrading the cache to empty or
// dropping the pending write. No filesystem error ever reaches the caller,
// and expired or corrupt data is never surfaced as valid.
package metadatacache
