// Package cache persists enrichment records as a human-readable JSON array
// with atomic-replace writes, plus a rebuildable SQLite index for queries.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"citefill/internal/record"
	"citefill/internal/title"
)

// Store is the durable mapping from cache key to enrichment record, backed by
// a single JSON file. One run owns one Store; there is no concurrent writer.
type Store struct {
	path    string
	records map[string]*record.Record
	order   []string // first-added key order, preserved across persist/load
}

// Load reads the store file at path. A missing, empty, or unparseable file
// yields an empty store: a corrupt cache means "start over", never a failure.
// Entries without a usable title are dropped, and every surviving entry gets
// its cache key recomputed from the title, so manual edits to the file cannot
// leave keys out of sync.
func Load(path string) (*Store, error) {
	s := &Store{
		path:    path,
		records: make(map[string]*record.Record),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an array of records. Treat as empty rather than fatal.
		return s, nil
	}

	for _, entry := range raw {
		var rec record.Record
		if err := json.Unmarshal(entry, &rec); err != nil {
			continue // not an object
		}

		orig := strings.TrimSpace(rec.InputTitle)
		if orig == "" {
			orig = strings.TrimSpace(rec.Title)
		}
		if orig == "" {
			continue
		}

		key := title.Normalize(orig)
		if key == "" {
			continue
		}

		rec.CacheKey = key
		if rec.InputTitle == "" {
			rec.InputTitle = orig
		}
		s.Put(&rec)
	}

	return s, nil
}

// Path returns the file path backing this store.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return len(s.records)
}

// Has reports whether a record exists for the given cache key.
func (s *Store) Has(key string) bool {
	_, ok := s.records[key]
	return ok
}

// Get returns the record for the given cache key.
func (s *Store) Get(key string) (*record.Record, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

// Put stores a record under its cache key. A new key is appended to the
// store's ordering; replacing an existing key keeps its original position.
func (s *Store) Put(rec *record.Record) {
	if _, ok := s.records[rec.CacheKey]; !ok {
		s.order = append(s.order, rec.CacheKey)
	}
	s.records[rec.CacheKey] = rec
}

// Keys returns the cache keys in first-added order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Records returns the records in first-added order.
func (s *Store) Records() []*record.Record {
	recs := make([]*record.Record, 0, len(s.order))
	for _, key := range s.order {
		recs = append(recs, s.records[key])
	}
	return recs
}

// Prune drops every record whose key is not in valid and returns the number
// removed. Used to align the cache with the current input title set.
func (s *Store) Prune(valid map[string]bool) int {
	kept := s.order[:0]
	removed := 0
	for _, key := range s.order {
		if valid[key] {
			kept = append(kept, key)
		} else {
			delete(s.records, key)
			removed++
		}
	}
	s.order = kept
	return removed
}

// Persist writes the full store to its file using write-to-temp, fsync, and
// atomic rename. On failure the temp file is removed and the previously
// persisted file is left untouched. Persistence failure is fatal to callers:
// continuing without durable state would silently lose enrichment work.
func (s *Store) Persist() error {
	return WriteRecords(s.path, s.Records())
}

// WriteRecords writes records to path as an indented JSON array using the
// same atomic-replace discipline as Persist.
func WriteRecords(path string, recs []*record.Record) error {
	if recs == nil {
		recs = []*record.Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp_*.json")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing cache file: %w", err)
	}

	return nil
}
