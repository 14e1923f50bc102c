package metrics

import "github.com/kilianp07/tariffopt/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddress is where /metrics is served when a prometheus sink
	// is configured.
	PrometheusAddress string `json:"prometheus_address"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddress == "" {
		c.PrometheusAddress = ":9100"
	}
}

// PrometheusEnabled reports whether a prometheus sink is configured.
func (c Config) PrometheusEnabled() bool {
	for _, s := range c.Sinks {
		if s.Type == "prometheus" {
			return true
		}
	}
	return false
}
