package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/core/store"
	"github.com/kilianp07/tariffopt/infra/logger"
)

// File names used by JSONFileStore.
const (
	TariffFile     = "tariffs.json"
	AppliancesFile = "appliances.json"
)

// JSONFileStore keeps each record in its own JSON file inside a directory.
// Missing, empty or undecodable files are reported as store.ErrNotFound so
// that the load-or-init helpers rewrite them with defaults.
type JSONFileStore struct {
	dir string
	log logger.Logger
	mu  sync.Mutex
}

// NewJSONFileStore creates dir if needed.
func NewJSONFileStore(dir string, log logger.Logger) (*JSONFileStore, error) {
	if dir == "" {
		return nil, errors.New("jsonfile: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: %w", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &JSONFileStore{dir: dir, log: log}, nil
}

func (s *JSONFileStore) LoadTariff(context.Context) (model.TariffTable, error) {
	b, err := s.read(TariffFile)
	if err != nil {
		return model.TariffTable{}, err
	}
	t, err := decodeTariff(b)
	if err != nil {
		s.log.Warnf("%s unreadable, recreating: %v", TariffFile, err)
		return model.TariffTable{}, store.ErrNotFound
	}
	return t, nil
}

func (s *JSONFileStore) SaveTariff(_ context.Context, t model.TariffTable) error {
	b, err := encodeTariff(t, true)
	if err != nil {
		return err
	}
	return s.write(TariffFile, b)
}

func (s *JSONFileStore) LoadAppliances(context.Context) ([]model.Appliance, error) {
	b, err := s.read(AppliancesFile)
	if err != nil {
		return nil, err
	}
	apps, err := decodeAppliances(b)
	if err != nil {
		s.log.Warnf("%s unreadable, recreating: %v", AppliancesFile, err)
		return nil, store.ErrNotFound
	}
	return apps, nil
}

func (s *JSONFileStore) SaveAppliances(_ context.Context, apps []model.Appliance) error {
	b, err := encodeAppliances(apps, true)
	if err != nil {
		return err
	}
	return s.write(AppliancesFile, b)
}

func (s *JSONFileStore) Close() error { return nil }

func (s *JSONFileStore) read(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Infof("%s missing, creating", name)
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		s.log.Warnf("%s empty, recreating", name)
		return nil, store.ErrNotFound
	}
	return b, nil
}

// write replaces the file atomically through a temporary sibling.
func (s *JSONFileStore) write(name string, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
