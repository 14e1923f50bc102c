package config

import (
	"fmt"
	"net/url"
)

// FeedConfig defines the remote tariff feed. Leaving URL empty disables it.
type FeedConfig struct {
	URL                 string   `json:"url"`
	ClientID            string   `json:"client_id"`
	ClientSecret        string   `json:"client_secret"`
	TokenURL            string   `json:"token_url"`
	Scopes              []string `json:"scopes"`
	PollIntervalSeconds int      `json:"poll_interval_seconds"`
	TimeoutSeconds      int      `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *FeedConfig) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Enabled reports whether a feed URL is configured.
func (c FeedConfig) Enabled() bool { return c.URL != "" }

// Validate checks the URL and the OAuth2 settings.
func (c FeedConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if _, err := url.ParseRequestURI(c.URL); err != nil {
		return fmt.Errorf("feed.url: %w", err)
	}
	if c.ClientID != "" && c.TokenURL == "" {
		return fmt.Errorf("feed.token_url is required with feed.client_id")
	}
	if c.PollIntervalSeconds < 0 {
		return fmt.Errorf("feed.poll_interval_seconds must not be negative")
	}
	return nil
}
