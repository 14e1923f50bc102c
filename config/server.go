package config

import (
	"fmt"
	"net"
)

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Address string `json:"address"`
	// APIToken, when set, is required as a bearer token on mutating routes.
	APIToken string `json:"api_token"`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":5000"
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		c.ShutdownTimeoutSeconds = 5
	}
}

// Validate checks the listen address.
func (c ServerConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("server.address: %w", err)
	}
	return nil
}
