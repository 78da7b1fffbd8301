package metadatacache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata_cache.json")
	return New(Options{Path: path}), path
}

func TestPutAndGet(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Put("movie|inception|2010", Entry{"tmdb_id": 27205, "title": "Inception"})

	entry, ok := cache.Get("movie|inception|2010")
	if !ok {
		t.Fatal("Get failed to find stored entry")
	}
	if entry["title"] != "Inception" {
		t.Errorf("title = %v, want Inception", entry["title"])
	}
	if _, ok := entry["timestamp"].(string); !ok {
		t.Error("Put should stamp a timestamp on the entry")
	}
}

func TestGetNotFound(t *testing.T) {
	cache, _ := newTestCache(t)

	if _, ok := cache.Get("movie|nonexistent|0"); ok {
		t.Error("Get should return false for unknown keys")
	}
}

func TestPutOverwritesCallerTimestamp(t *testing.T) {
	cache, _ := newTestCache(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return base }

	cache.Put("k", Entry{"timestamp": "1999-01-01T00:00:00Z"})

	entry, ok := cache.Get("k")
	if !ok {
		t.Fatal("entry missing")
	}
	if entry["timestamp"] != base.Format(time.RFC3339) {
		t.Errorf("timestamp = %v, want %s", entry["timestamp"], base.Format(time.RFC3339))
	}
}

func TestTTLBoundary(t *testing.T) {
	cache, _ := newTestCache(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cache.now = func() time.Time { return base.Add(-31 * 24 * time.Hour) }
	cache.Put("old", Entry{"title": "Old"})
	cache.now = func() time.Time { return base.Add(-29 * 24 * time.Hour) }
	cache.Put("fresh", Entry{"title": "Fresh"})

	cache.now = func() time.Time { return base }

	if _, ok := cache.Get("old"); ok {
		t.Error("31-day-old entry should be absent")
	}
	if entry, ok := cache.Get("fresh"); !ok {
		t.Error("29-day-old entry should be present")
	} else if entry["title"] != "Fresh" {
		t.Errorf("fresh entry mutated: %v", entry)
	}
}

func TestExpiredReadEvictsAndMarksDirty(t *testing.T) {
	cache, path := newTestCache(t)
	base := time.Now()

	cache.now = func() time.Time { return base.Add(-40 * 24 * time.Hour) }
	cache.Put("stale", Entry{"title": "Stale"})
	cache.now = func() time.Time { return base }
	cache.Close()

	reopened := New(Options{Path: path})
	if _, ok := reopened.Get("stale"); ok {
		t.Fatal("expired entry should be absent")
	}
	reopened.Close()

	// The eviction marked the cache dirty, so Close rewrote the document
	// without the stale key.
	final := New(Options{Path: path})
	if final.Len() != 0 {
		t.Errorf("persisted cache should be empty after eviction, has %d entries", final.Len())
	}
}

func TestMissingTimestampCountsAsExpired(t *testing.T) {
	cache, _ := newTestCache(t)
	cache.mu.Lock()
	cache.entries["bare"] = Entry{"title": "No Stamp"}
	cache.entries["garbled"] = Entry{"title": "Bad Stamp", "timestamp": "not-a-time"}
	cache.mu.Unlock()

	if _, ok := cache.Get("bare"); ok {
		t.Error("entry without timestamp should be treated as expired")
	}
	if _, ok := cache.Get("garbled"); ok {
		t.Error("entry with unparsable timestamp should be treated as expired")
	}
}

func TestRoundTripThroughDisk(t *testing.T) {
	cache, path := newTestCache(t)

	cache.PutByQuery("Movie", "  The Matrix ", 1999, Entry{"tmdb_id": 603, "title": "The Matrix"})
	cache.Close()

	reopened := New(Options{Path: path})
	entry, ok := reopened.GetByQuery("movie", "the matrix", 1999)
	if !ok {
		t.Fatal("entry missing after reload")
	}
	if entry["title"] != "The Matrix" {
		t.Errorf("title = %v, want The Matrix", entry["title"])
	}
	// JSON numbers decode as float64.
	if entry["tmdb_id"] != float64(603) {
		t.Errorf("tmdb_id = %v, want 603", entry["tmdb_id"])
	}
}

func TestPersistedDocumentShape(t *testing.T) {
	cache, path := newTestCache(t)
	cache.PutByQuery("movie", "Léon", 1994, Entry{"title": "Léon"})
	cache.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cache file: %v", err)
	}

	var doc struct {
		Version string                    `json:"version"`
		Updated string                    `json:"updated"`
		Entries map[string]map[string]any `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	if doc.Version != "1.0" {
		t.Errorf("version = %q, want 1.0", doc.Version)
	}
	if _, err := time.Parse(time.RFC3339, doc.Updated); err != nil {
		t.Errorf("updated %q is not RFC 3339: %v", doc.Updated, err)
	}
	if _, ok := doc.Entries["movie|léon|1994"]; !ok {
		t.Errorf("entries missing normalized key, got %v", doc.Entries)
	}
	if !strings.Contains(string(data), "léon") {
		t.Error("non-ASCII should be preserved, not escaped")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	cache, path := newTestCache(t)
	cache.Put("k", Entry{"title": "Once"})
	cache.Close()

	// With no intervening mutation a second Close must not write again.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove cache file: %v", err)
	}
	cache.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("second Close performed a disk write")
	}
}

func TestCloseWithoutMutationWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata_cache.json")
	cache := New(Options{Path: path})
	cache.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Close on an unmutated cache should not create a file")
	}
}

func TestDisabledMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata_cache.json")
	cache := New(Options{Path: path, Disabled: true})

	cache.Put("k", Entry{"title": "Dropped"})
	if _, ok := cache.Get("k"); ok {
		t.Error("disabled cache should report every key absent")
	}

	cache.Clear()
	cache.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled cache should never touch disk")
	}
	if cache.Path() != "" {
		t.Errorf("Path() = %q, want empty for disabled cache", cache.Path())
	}
}

func TestCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata_cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	cache := New(Options{Path: path})
	if cache.Len() != 0 {
		t.Errorf("corrupt file should load as empty, got %d entries", cache.Len())
	}

	cache.Put("k", Entry{"title": "Recovered"})
	cache.Close()

	reopened := New(Options{Path: path})
	if _, ok := reopened.Get("k"); !ok {
		t.Error("put+close should overwrite the corrupt file with a valid document")
	}
}

func TestClearRemovesFileAndEntries(t *testing.T) {
	cache, path := newTestCache(t)
	cache.Put("k", Entry{"title": "Gone"})
	cache.Close()

	cache.Clear()

	if _, ok := cache.Get("k"); ok {
		t.Error("Get should miss after Clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("backing file should be deleted by Clear")
	}
}

func TestClearWithMissingFile(t *testing.T) {
	cache, _ := newTestCache(t)
	// Nothing persisted yet; Clear must not log a deletion failure path as
	// an error or panic.
	cache.Clear()
}

func TestListSortsNewestFirst(t *testing.T) {
	cache, _ := newTestCache(t)
	base := time.Now()

	cache.now = func() time.Time { return base.Add(-2 * time.Hour) }
	cache.Put("oldest", Entry{"title": "Oldest"})
	cache.now = func() time.Time { return base }
	cache.Put("newest", Entry{"title": "Newest"})
	cache.now = func() time.Time { return base.Add(-time.Hour) }
	cache.Put("middle", Entry{"title": "Middle"})

	records := cache.List()
	if len(records) != 3 {
		t.Fatalf("List returned %d records, want 3", len(records))
	}
	want := []string{"newest", "middle", "oldest"}
	for i, key := range want {
		if records[i].Key != key {
			t.Errorf("records[%d].Key = %q, want %q", i, records[i].Key, key)
		}
	}
}

func TestCustomTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata_cache.json")
	cache := New(Options{Path: path, TTL: time.Hour})
	base := time.Now()

	cache.now = func() time.Time { return base.Add(-2 * time.Hour) }
	cache.Put("k", Entry{"title": "Short Lived"})
	cache.now = func() time.Time { return base }

	if _, ok := cache.Get("k"); ok {
		t.Error("entry older than the custom TTL should be absent")
	}
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	// Parent "directory" is a regular file, so the save cannot succeed.
	cache := New(Options{Path: filepath.Join(blocker, "cache.json")})
	cache.Put("k", Entry{"title": "Doomed"})
	cache.Close()

	// The failed save cleared the dirty flag; the cache stays usable.
	if _, ok := cache.Get("k"); !ok {
		t.Error("in-memory entry should survive a failed save")
	}
}
