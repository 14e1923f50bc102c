package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffopt/core/factory"
	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/core/store"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "advisor.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	_, err = s.LoadTariff(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.LoadAppliances(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	c := store.NewCatalog(s)
	app, err := c.Add(ctx, model.NewAppliance{Name: "Heat Pump", PowerKW: 2.2, DurationHours: 3})
	require.NoError(t, err)
	assert.Equal(t, 6, app.ID)
	require.NoError(t, c.SetTariff(ctx, model.TariffTable{Plan: "Flat", Slots: []model.TimeSlot{{Start: "00:00", End: "24:00", Rate: 3}}}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	apps, err := reopened.LoadAppliances(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 6)
	tariff, err := reopened.LoadTariff(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Flat", tariff.Plan)
}

func TestSQLiteBackendFromRegistry(t *testing.T) {
	repo, err := store.NewRepository(factory.ModuleConfig{
		Type: "sqlite",
		Conf: map[string]any{"path": filepath.Join(t.TempDir(), "r.db")},
	})
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()
	assert.IsType(t, &SQLStore{}, repo)

	_, err = store.NewRepository(factory.ModuleConfig{Type: "sqlite"})
	assert.Error(t, err)
}

func TestJSONFileBackendFromRegistry(t *testing.T) {
	repo, err := store.NewRepository(factory.ModuleConfig{
		Type: "jsonfile",
		Conf: map[string]any{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	assert.IsType(t, &JSONFileStore{}, repo)
	assert.Subset(t, store.Backends(), []string{"jsonfile", "memory", "postgres", "redis", "sqlite"})
}
