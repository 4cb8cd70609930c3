package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/wbin/pkg/api"
)

type stubStarter struct{ called bool }

func (s *stubStarter) StartServer(ctx context.Context, catalog api.ArchiveCatalog, config api.ServerConfig) error {
	s.called = true
	return nil
}

type stubFactory struct{ starter *stubStarter }

func (f *stubFactory) CreateServerStarter() api.ServerStarter {
	return f.starter
}

func TestNewContainer(t *testing.T) {
	c := NewContainer()
	require.NotNil(t, c.GetCatalogOpener())
	require.NotNil(t, c.GetServerFactory())

	cat, err := c.GetCatalogOpener().OpenCatalog(filepath.Join(t.TempDir(), "catalog"))
	require.NoError(t, err)
	archives, err := cat.List()
	require.NoError(t, err)
	assert.Empty(t, archives)
	require.NoError(t, cat.Close())
}

func TestContainer_Overrides(t *testing.T) {
	c := NewContainer()
	starter := &stubStarter{}
	c.SetServerFactory(&stubFactory{starter: starter})

	err := c.GetServerFactory().CreateServerStarter().StartServer(context.Background(), nil, api.ServerConfig{})
	require.NoError(t, err)
	assert.True(t, starter.called)

	opener := api.NewCatalogOpener()
	c.SetCatalogOpener(opener)
	assert.Same(t, opener, c.GetCatalogOpener())
}
