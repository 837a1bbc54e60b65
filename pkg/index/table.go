package index

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ssargent/geostore/pkg/codec"
)

// Table is an index file loaded into a hash map for O(1) average-case key
// resolution. Only the first offset seen for a key is kept, matching the
// first-match rule of Lookup. A Table is read-only once loaded and safe for
// concurrent use.
type Table struct {
	entries map[string]int64
	lines   int
	config  LookupConfig
}

// LoadTable reads config.IndexPath into memory
func LoadTable(config LookupConfig) (*Table, error) {
	file, err := os.Open(config.IndexPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	t := &Table{
		entries: make(map[string]int64),
		config:  config,
	}
	err = scanEntries(file, func(e Entry) bool {
		t.lines++
		if _, exists := t.entries[e.Key]; !exists {
			t.entries[e.Key] = e.Offset
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.IndexPath, err)
	}

	return t, nil
}

// Get retrieves the frame offset for a key
func (t *Table) Get(key string) (int64, bool) {
	offset, exists := t.entries[key]
	return offset, exists
}

// Lookup resolves key and reads its record from the store
func (t *Table) Lookup(key string) (*codec.Record, error) {
	offset, exists := t.Get(key)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return readRecord(t.config, key, offset)
}

// Size returns the number of distinct keys
func (t *Table) Size() int {
	return len(t.entries)
}

// Lines returns the number of index lines loaded, duplicates included
func (t *Table) Lines() int {
	return t.lines
}

// Keys returns all keys in sorted order
func (t *Table) Keys() []string {
	return t.KeysWithPrefix("")
}

// KeysWithPrefix returns the keys that start with prefix, sorted
func (t *Table) KeysWithPrefix(prefix string) []string {
	var keys []string
	for key := range t.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
