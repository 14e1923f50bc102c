package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/tariffopt/core/model"
)

// Catalog wraps a Repository with the read-modify-write operations used by
// the API and the CLI.
type Catalog struct {
	repo Repository
	mu   sync.Mutex
}

// NewCatalog returns a Catalog backed by repo.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Repository returns the underlying repository.
func (c *Catalog) Repository() Repository { return c.repo }

// List returns the appliance list, initializing it on first use.
func (c *Catalog) List(ctx context.Context) ([]model.Appliance, error) {
	return LoadOrInitAppliances(ctx, c.repo)
}

// Add appends an appliance with the next free id.
func (c *Catalog) Add(ctx context.Context, in model.NewAppliance) (model.Appliance, error) {
	if err := in.Validate(); err != nil {
		return model.Appliance{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	apps, err := LoadOrInitAppliances(ctx, c.repo)
	if err != nil {
		return model.Appliance{}, err
	}
	next := 0
	for _, a := range apps {
		if a.ID > next {
			next = a.ID
		}
	}
	app := model.Appliance{ID: next + 1, Name: in.Name, PowerKW: in.PowerKW, DurationHours: in.DurationHours}
	if err := c.repo.SaveAppliances(ctx, append(apps, app)); err != nil {
		return model.Appliance{}, fmt.Errorf("save appliances: %w", err)
	}
	return app, nil
}

// Delete removes the appliance with the given id. Deleting an unknown id is
// not an error.
func (c *Catalog) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	apps, err := LoadOrInitAppliances(ctx, c.repo)
	if err != nil {
		return err
	}
	kept := apps[:0]
	for _, a := range apps {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if err := c.repo.SaveAppliances(ctx, kept); err != nil {
		return fmt.Errorf("save appliances: %w", err)
	}
	return nil
}

// Tariff returns the validated tariff, initializing it on first use.
func (c *Catalog) Tariff(ctx context.Context) (model.TariffTable, error) {
	return LoadOrInitTariff(ctx, c.repo)
}

// SetTariff validates and stores a new tariff.
func (c *Catalog) SetTariff(ctx context.Context, t model.TariffTable) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.repo.SaveTariff(ctx, t); err != nil {
		return fmt.Errorf("save tariff: %w", err)
	}
	return nil
}

// Snapshot loads both records for a single evaluation.
func (c *Catalog) Snapshot(ctx context.Context) (model.TariffTable, []model.Appliance, error) {
	t, err := c.Tariff(ctx)
	if err != nil {
		return model.TariffTable{}, nil, err
	}
	apps, err := c.List(ctx)
	if err != nil {
		return model.TariffTable{}, nil, err
	}
	return t, apps, nil
}
