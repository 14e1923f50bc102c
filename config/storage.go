package config

import (
	"fmt"

	"github.com/kilianp07/tariffopt/core/factory"
)

// StorageConfig selects the repository backend and its settings.
type StorageConfig struct {
	Backend string         `json:"backend"`
	Conf    map[string]any `json:"conf"`
}

// SetDefaults stores records as JSON files under ./data.
func (c *StorageConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonfile"
	}
}

// Validate checks that a backend is named.
func (c StorageConfig) Validate() error {
	if c.Backend == "" {
		return fmt.Errorf("storage.backend is required")
	}
	return nil
}

// Module returns the factory configuration of the backend.
func (c StorageConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Backend, Conf: c.Conf}
}
