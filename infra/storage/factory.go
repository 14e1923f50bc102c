package storage

import (
	"github.com/kilianp07/tariffopt/core/factory"
	"github.com/kilianp07/tariffopt/core/store"
	"github.com/kilianp07/tariffopt/infra/logger"
)

// init registers the persistent backends.
func init() {
	_ = store.RegisterBackend("jsonfile", func(conf map[string]any) (store.Repository, error) {
		var c struct {
			Dir string `json:"dir"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Dir == "" {
			c.Dir = "data"
		}
		return NewJSONFileStore(c.Dir, logger.New("jsonfile-store"))
	})

	_ = store.RegisterBackend("sqlite", func(conf map[string]any) (store.Repository, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})

	_ = store.RegisterBackend("postgres", func(conf map[string]any) (store.Repository, error) {
		var c struct {
			DSN string `json:"dsn"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPostgresStore(c.DSN)
	})

	_ = store.RegisterBackend("redis", func(conf map[string]any) (store.Repository, error) {
		var c struct {
			Addr     string `json:"addr"`
			Password string `json:"password"`
			DB       int    `json:"db"`
			Prefix   string `json:"prefix"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRedisStore(c.Addr, c.Password, c.DB, c.Prefix)
	})
}
