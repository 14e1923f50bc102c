package store

import (
	"context"
	"sync"

	"github.com/kilianp07/tariffopt/core/model"
)

// MemoryStore keeps records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu         sync.Mutex
	tariff     *model.TariffTable
	appliances []model.Appliance
	hasApps    bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) LoadTariff(context.Context) (model.TariffTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tariff == nil {
		return model.TariffTable{}, ErrNotFound
	}
	t := *s.tariff
	t.Slots = append([]model.TimeSlot(nil), t.Slots...)
	return t, nil
}

func (s *MemoryStore) SaveTariff(_ context.Context, t model.TariffTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Slots = append([]model.TimeSlot(nil), t.Slots...)
	s.tariff = &t
	return nil
}

func (s *MemoryStore) LoadAppliances(context.Context) ([]model.Appliance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasApps {
		return nil, ErrNotFound
	}
	return append([]model.Appliance{}, s.appliances...), nil
}

func (s *MemoryStore) SaveAppliances(_ context.Context, apps []model.Appliance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appliances = append([]model.Appliance{}, apps...)
	s.hasApps = true
	return nil
}

func (s *MemoryStore) Close() error { return nil }
