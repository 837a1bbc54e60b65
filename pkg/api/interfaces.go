// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/geostore/pkg/index"
)

// CatalogOpener opens the record store served by the API
type CatalogOpener interface {
	OpenCatalog(config index.LookupConfig) (RecordStore, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves records until ctx is cancelled
	StartServer(ctx context.Context, records RecordStore, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
