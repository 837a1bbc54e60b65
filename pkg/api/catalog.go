package api

import (
	"fmt"

	"github.com/ssargent/geostore/pkg/codec"
	"github.com/ssargent/geostore/pkg/index"
	"github.com/ssargent/geostore/pkg/store"
)

// Catalog serves lookups from an index table loaded at startup. The store
// and index files are treated as immutable while it is open; rebuilding them
// requires a restart.
type Catalog struct {
	table  *index.Table
	header store.Header
}

// OpenCatalog validates the store header and loads the index into memory
func OpenCatalog(config index.LookupConfig) (*Catalog, error) {
	header, err := store.ReadHeader(config.StorePath)
	if err != nil {
		return nil, fmt.Errorf("read store header: %w", err)
	}

	table, err := index.LoadTable(config)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	return &Catalog{table: table, header: header}, nil
}

// Lookup returns the record stored under key
func (c *Catalog) Lookup(key string) (*codec.Record, error) {
	return c.table.Lookup(key)
}

// Header returns the store header read at open
func (c *Catalog) Header() store.Header {
	return c.header
}

// Entries returns the number of index lines loaded
func (c *Catalog) Entries() int {
	return c.table.Lines()
}
