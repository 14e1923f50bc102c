//go:build !no_containers

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/core/store"
	"github.com/kilianp07/tariffopt/test/util"
)

func exerciseRepository(t *testing.T, repo store.Repository) {
	t.Helper()
	ctx := context.Background()
	_, err := repo.LoadTariff(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	tariff, apps, err := store.NewCatalog(repo).Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTariff(), tariff)
	assert.Equal(t, model.DefaultAppliances(), apps)

	require.NoError(t, store.NewCatalog(repo).Delete(ctx, 1))
	apps, err = repo.LoadAppliances(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 4)
}

func TestRedisStoreIntegration(t *testing.T) {
	util.RequireDocker(t)
	addr, cleanup, err := util.StartRedis(context.Background())
	require.NoError(t, err)
	defer cleanup()

	s, err := NewRedisStore(addr, "", 0, "it:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseRepository(t, s)
}

func TestPostgresStoreIntegration(t *testing.T) {
	util.RequireDocker(t)
	dsn, cleanup, err := util.StartPostgres(context.Background())
	require.NoError(t, err)
	defer cleanup()

	s, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseRepository(t, s)
}
