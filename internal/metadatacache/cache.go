package metadatacache

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"metacache/internal/logging"
)

// DefaultTTL is how long an entry stays valid after it was written.
const DefaultTTL = 30 * 24 * time.Hour

// timestampField is stamped onto every entry on write; the caller never
// controls it.
const timestampField = "timestamp"

// Entry is an arbitrary JSON-serializable lookup result. Fields are defined
// by the caller's domain; the cache owns only the timestamp field.
type Entry map[string]any

// Record pairs an entry with its cache key, for listings.
type Record struct {
	Key   string
	Entry Entry
}

// Options describes cache construction parameters.
type Options struct {
	// Path is the backing JSON document. An empty path disables the cache.
	Path string
	// Disabled turns every operation into a no-op; no disk I/O ever occurs.
	Disabled bool
	// TTL overrides DefaultTTL when positive.
	TTL    time.Duration
	Logger *slog.Logger
}

// Cache is an in-memory map of normalized query keys to metadata entries,
// loaded from disk at construction and flushed back by Close only when
// mutated. A single mutex serializes all operations; multi-process access
// is not coordinated (last Close wins).
type Cache struct {
	path     string
	disabled bool
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
	dirty   bool
}

// New creates a cache backed by opts.Path. Load failures degrade to an
// empty cache with a logged warning; New never fails.
func New(opts Options) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Cache{
		path:     opts.Path,
		disabled: opts.Disabled || opts.Path == "",
		ttl:      ttl,
		logger:   logging.NewComponentLogger(opts.Logger, "metadatacache"),
		now:      time.Now,
		entries:  make(map[string]Entry),
	}

	if c.disabled {
		return c
	}

	entries, err := readStore(c.path)
	if err != nil {
		c.logger.Warn("failed to load metadata cache",
			logging.Error(err),
			logging.String("path", c.path))
		return c
	}
	if entries != nil {
		c.entries = entries
		c.logger.Info("loaded metadata cache",
			logging.Int("entry_count", len(entries)),
			logging.String("path", c.path))
	}

	return c
}

// Get returns the entry for key. Unknown keys and expired entries report
// absent; an expired entry is evicted as a side effect.
func (c *Cache) Get(key string) (Entry, bool) {
	if c.disabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.expired(entry) {
		c.logger.Debug("cache entry expired", logging.String("key", key))
		delete(c.entries, key)
		c.dirty = true
		return nil, false
	}

	return entry, true
}

// GetByQuery looks up the entry for a (media type, title, year) query.
func (c *Cache) GetByQuery(mediaType, title string, year int) (Entry, bool) {
	return c.Get(Key(mediaType, title, year))
}

// Put inserts or replaces the entry for key and stamps its timestamp,
// overwriting any caller-supplied value.
func (c *Cache) Put(key string, entry Entry) {
	if c.disabled {
		return
	}
	if entry == nil {
		entry = make(Entry, 1)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry[timestampField] = c.now().Format(time.RFC3339)
	c.entries[key] = entry
	c.dirty = true
}

// PutByQuery stores the entry under the normalized query key.
func (c *Cache) PutByQuery(mediaType, title string, year int, entry Entry) {
	c.Put(Key(mediaType, title, year), entry)
}

// Clear empties the in-memory map and deletes the backing file immediately,
// independent of the dirty-flush protocol. Deletion failures are logged,
// never returned.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.dirty = true
	c.mu.Unlock()

	if c.disabled {
		return
	}

	if err := deleteStore(c.path); err != nil {
		c.logger.Warn("failed to delete cache file",
			logging.Error(err),
			logging.String("path", c.path))
		return
	}
	c.logger.Info("metadata cache cleared", logging.String("path", c.path))
}

// Close persists the cache if it was mutated since the last save. The save
// is attempted once; a failure is logged and the pending mutations are
// dropped. Safe to call repeatedly.
func (c *Cache) Close() {
	if c.disabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return
	}

	if err := writeStore(c.path, c.entries, c.now()); err != nil {
		c.logger.Warn("failed to save metadata cache",
			logging.Error(err),
			logging.String("path", c.path))
	} else {
		c.logger.Info("saved metadata cache",
			logging.Int("entry_count", len(c.entries)),
			logging.String("path", c.path))
	}
	c.dirty = false
}

// List returns all entries sorted newest-first; entries without a parsable
// timestamp sort last. Expired entries are not filtered here so listings
// can show what the file actually holds.
func (c *Cache) List() []Record {
	if c.disabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]Record, 0, len(c.entries))
	for key, entry := range c.entries {
		records = append(records, Record{Key: key, Entry: entry})
	}

	sort.Slice(records, func(i, j int) bool {
		ti, iok := entryTimestamp(records[i].Entry)
		tj, jok := entryTimestamp(records[j].Entry)
		if iok != jok {
			return iok
		}
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return records[i].Key < records[j].Key
	})

	return records
}

// Len returns the number of entries currently in memory.
func (c *Cache) Len() int {
	if c.disabled {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Path returns the backing file location, empty when disabled.
func (c *Cache) Path() string {
	if c.disabled {
		return ""
	}
	return c.path
}

// expired reports whether the entry is older than the TTL. A missing or
// unparsable timestamp counts as expired.
func (c *Cache) expired(entry Entry) bool {
	stamp, ok := entryTimestamp(entry)
	if !ok {
		return true
	}
	return c.now().After(stamp.Add(c.ttl))
}

// timestampLayouts accepts our RFC 3339 stamps plus the bare local form
// other tooling writes.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func entryTimestamp(entry Entry) (time.Time, bool) {
	raw, ok := entry[timestampField].(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if stamp, err := time.Parse(layout, raw); err == nil {
			return stamp, true
		}
	}
	return time.Time{}, false
}
