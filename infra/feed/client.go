package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/kilianp07/tariffopt/config"
	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/infra/logger"
)

// maxBody caps the size of a tariff document.
const maxBody = 1 << 20

// TariffSaver stores a validated tariff.
type TariffSaver interface {
	SetTariff(ctx context.Context, t model.TariffTable) error
}

// Client downloads tariff tables from a remote feed.
type Client struct {
	url      string
	http     *http.Client
	saver    TariffSaver
	log      logger.Logger
	interval time.Duration
}

// NewClient creates a feed client. When a client id is configured requests
// carry an OAuth2 bearer token obtained with the client credentials grant.
func NewClient(cfg config.FeedConfig, saver TariffSaver) *Client {
	cfg.SetDefaults()
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	hc := &http.Client{Timeout: timeout}
	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		hc = cc.Client(context.Background())
		hc.Timeout = timeout
	}
	return &Client{
		url:      cfg.URL,
		http:     hc,
		saver:    saver,
		log:      logger.New("tariff-feed"),
		interval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
	}
}

// Fetch downloads and validates the tariff.
func (c *Client) Fetch(ctx context.Context) (model.TariffTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return model.TariffTable{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return model.TariffTable{}, fmt.Errorf("fetch tariff: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.TariffTable{}, fmt.Errorf("fetch tariff: unexpected status %s", resp.Status)
	}
	var t model.TariffTable
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&t); err != nil {
		return model.TariffTable{}, fmt.Errorf("decode tariff: %w", err)
	}
	if err := t.Validate(); err != nil {
		return model.TariffTable{}, err
	}
	return t, nil
}

// Sync fetches the tariff and stores it.
func (c *Client) Sync(ctx context.Context) (model.TariffTable, error) {
	t, err := c.Fetch(ctx)
	if err != nil {
		return model.TariffTable{}, err
	}
	if err := c.saver.SetTariff(ctx, t); err != nil {
		return model.TariffTable{}, err
	}
	c.log.Infof("tariff %q synced with %d slots", t.Plan, len(t.Slots))
	return t, nil
}

// Start syncs once, then on every poll interval until ctx is canceled.
// Failures are logged and retried on the next tick.
func (c *Client) Start(ctx context.Context) error {
	if c.interval <= 0 {
		return fmt.Errorf("feed poll interval not configured")
	}
	if _, err := c.Sync(ctx); err != nil {
		c.log.Errorf("sync error: %v", err)
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := c.Sync(ctx); err != nil {
				c.log.Errorf("sync error: %v", err)
			}
		}
	}
}
