package store

import "github.com/kilianp07/tariffopt/core/factory"

var backendRegistry = factory.NewRegistry[Repository]()

func init() {
	_ = RegisterBackend("memory", func(map[string]any) (Repository, error) {
		return NewMemoryStore(), nil
	})
}

// RegisterBackend adds a repository factory identified by name.
func RegisterBackend(name string, f factory.Factory[Repository]) error {
	return backendRegistry.Register(name, f)
}

// NewRepository creates the repository described by cfg.
func NewRepository(cfg factory.ModuleConfig) (Repository, error) {
	return backendRegistry.Create(cfg)
}

// Backends lists the registered backend names.
func Backends() []string { return backendRegistry.Names() }
