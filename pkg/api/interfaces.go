// Package api provides interfaces for dependency injection
package api

import "context"

// CatalogOpener opens the archive catalog
type CatalogOpener interface {
	// OpenCatalog opens or creates the catalog in dir
	OpenCatalog(dir string) (ArchiveCatalog, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API until ctx is done
	StartServer(ctx context.Context, catalog ArchiveCatalog, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
