package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/tariffopt/core/model"
)

// ErrNotFound is returned by a Repository when a record has never been saved
// or can no longer be read.
var ErrNotFound = errors.New("record not found")

// Record keys shared by key-value backends.
const (
	KeyTariff     = "tariff"
	KeyAppliances = "appliances"
)

// Repository persists the tariff plan and the appliance list.
type Repository interface {
	LoadTariff(ctx context.Context) (model.TariffTable, error)
	SaveTariff(ctx context.Context, t model.TariffTable) error
	LoadAppliances(ctx context.Context) ([]model.Appliance, error)
	SaveAppliances(ctx context.Context, apps []model.Appliance) error
	Close() error
}

// LoadOrInitTariff returns the stored tariff. A missing record is replaced by
// the default tariff, which is saved before being returned. The tariff is
// validated either way.
func LoadOrInitTariff(ctx context.Context, repo Repository) (model.TariffTable, error) {
	t, err := repo.LoadTariff(ctx)
	if errors.Is(err, ErrNotFound) {
		t = model.DefaultTariff()
		if err := repo.SaveTariff(ctx, t); err != nil {
			return model.TariffTable{}, fmt.Errorf("init tariff: %w", err)
		}
	} else if err != nil {
		return model.TariffTable{}, fmt.Errorf("load tariff: %w", err)
	}
	if err := t.Validate(); err != nil {
		return model.TariffTable{}, fmt.Errorf("load tariff: %w", err)
	}
	return t, nil
}

// LoadOrInitAppliances returns the stored appliance list, installing the
// default list when none exists.
func LoadOrInitAppliances(ctx context.Context, repo Repository) ([]model.Appliance, error) {
	apps, err := repo.LoadAppliances(ctx)
	if errors.Is(err, ErrNotFound) {
		apps = model.DefaultAppliances()
		if err := repo.SaveAppliances(ctx, apps); err != nil {
			return nil, fmt.Errorf("init appliances: %w", err)
		}
		return apps, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load appliances: %w", err)
	}
	return apps, nil
}
