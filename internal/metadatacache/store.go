package metadatacache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// storeVersion identifies the persisted document schema.
const storeVersion = "1.0"

// document is the full persisted cache file.
type document struct {
	Version string           `json:"version"`
	Updated string           `json:"updated"`
	Entries map[string]Entry `json:"entries"`
}

// readStore loads the persisted document. A missing file is a fresh start
// and returns a nil map with no error.
func readStore(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse cache file: %w", err)
	}

	return doc.Entries, nil
}

// writeStore rewrites the document wholesale, creating the parent directory
// if needed. The write goes through a temp file and rename so a crash never
// leaves a truncated document behind.
func writeStore(path string, entries map[string]Entry, now time.Time) error {
	doc := document{
		Version: storeVersion,
		Updated: now.Format(time.RFC3339),
		Entries: entries,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// deleteStore removes the backing file. An already-missing file is fine.
func deleteStore(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache file: %w", err)
	}
	return nil
}
