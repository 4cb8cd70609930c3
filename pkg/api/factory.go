// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/ssargent/wbin/pkg/catalog"
)

// DefaultCatalogOpener opens the pebble-backed catalog
type DefaultCatalogOpener struct{}

// NewCatalogOpener creates a new catalog opener
func NewCatalogOpener() CatalogOpener {
	return &DefaultCatalogOpener{}
}

// OpenCatalog opens or creates the catalog in dir
func (o *DefaultCatalogOpener) OpenCatalog(dir string) (ArchiveCatalog, error) {
	return catalog.Open(dir)
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
func (s *DefaultServerStarter) StartServer(ctx context.Context, catalog ArchiveCatalog, config ServerConfig) error {
	return StartServer(ctx, catalog, config)
}
