package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffopt/config"
	"github.com/kilianp07/tariffopt/core/model"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestServiceHandler(t *testing.T) {
	svc, err := New(context.Background(), memoryConfig(t))
	require.NoError(t, err)
	defer svc.Close()

	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/appliances")
	require.NoError(t, err)
	defer resp.Body.Close()
	var apps []model.Appliance
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apps))
	assert.Len(t, apps, 5)

	assert.Error(t, svc.SyncTariff(context.Background()))
}

func TestServiceSyncTariff(t *testing.T) {
	flat := model.TariffTable{Plan: "Flat", Slots: []model.TimeSlot{{Start: "00:00", End: "24:00", Rate: 0.25, Category: "flat"}}}
	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(flat)
	}))
	defer feedSrv.Close()

	cfg := memoryConfig(t)
	cfg.Feed.URL = feedSrv.URL
	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()

	require.NoError(t, svc.SyncTariff(context.Background()))
	got, err := svc.Catalog.Tariff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, flat, got)
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := memoryConfig(t)
	cfg.Server.Address = addr
	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestOpenCatalogUnknownBackend(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Backend = "etcd"
	_, err := OpenCatalog(context.Background(), cfg)
	assert.Error(t, err)
}
