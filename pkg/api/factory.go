// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/ssargent/geostore/pkg/index"
)

// DefaultCatalogOpener is the default implementation of CatalogOpener
type DefaultCatalogOpener struct{}

// NewCatalogOpener creates a new catalog opener
func NewCatalogOpener() CatalogOpener {
	return &DefaultCatalogOpener{}
}

// OpenCatalog loads the index table for config
func (o *DefaultCatalogOpener) OpenCatalog(config index.LookupConfig) (RecordStore, error) {
	return OpenCatalog(config)
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, records RecordStore, config ServerConfig) error {
	return StartServer(ctx, records, config)
}
