//go:build !no_containers

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffopt/app"
	"github.com/kilianp07/tariffopt/config"
	"github.com/kilianp07/tariffopt/core/factory"
	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/infra/mqtt"
	"github.com/kilianp07/tariffopt/test/util"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().String()
}

// TestAdvisorEndToEnd runs the service on Redis with Prometheus, InfluxDB and
// MQTT notifications enabled, then follows one optimization request through
// every output.
func TestAdvisorEndToEnd(t *testing.T) {
	util.RequireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	redisAddr, stopRedis, err := util.StartRedis(ctx)
	require.NoError(t, err)
	defer stopRedis()
	broker, stopBroker, err := util.StartMosquitto(ctx)
	require.NoError(t, err)
	defer stopBroker()
	influxURL, stopInflux, err := util.StartInfluxDB(ctx)
	require.NoError(t, err)
	defer stopInflux()

	cfg := config.Default()
	cfg.Server.Address = freeAddr(t)
	cfg.Storage = config.StorageConfig{Backend: "redis", Conf: map[string]any{"addr": redisAddr, "prefix": "e2e:"}}
	cfg.Metrics.PrometheusAddress = freeAddr(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{
		{Type: "prometheus"},
		{Type: "influx", Conf: map[string]any{"url": influxURL, "token": util.InfluxToken, "org": util.InfluxOrg, "bucket": util.InfluxBucket}},
	}
	cfg.MQTT = mqtt.Config{Enabled: true, Broker: broker, TopicPrefix: "e2e/recs", QoS: 1}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := app.New(ctx, cfg)
	require.NoError(t, err)
	defer svc.Close()
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Run(runCtx) }()

	base := "http://" + cfg.Server.Address
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond)

	body, _ := json.Marshal(map[string]any{"appliances": []int{3}})
	resp, err := http.Post(base+"/api/optimize", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var recs []model.Recommendation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	resp.Body.Close()
	require.Len(t, recs, 1)
	assert.Equal(t, "EV Charger", recs[0].ApplianceName)

	metricCtx, metricCancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer metricCancel()
	require.NoError(t, util.WaitForMetric(metricCtx, fmt.Sprintf("http://%s/metrics", cfg.Metrics.PrometheusAddress),
		`advisor_recommendations_total{appliance="EV Charger"} 1`))

	received := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-sub"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(10*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)
	tok = sub.Subscribe("e2e/recs/3", 1, func(_ paho.Client, m paho.Message) {
		select {
		case received <- m.Payload():
		default:
		}
	})
	require.True(t, tok.WaitTimeout(10*time.Second))
	select {
	case payload := <-received:
		var n mqtt.Notification
		require.NoError(t, json.Unmarshal(payload, &n))
		assert.Equal(t, recs[0].BestSlots, n.BestSlots)
	case <-time.After(10 * time.Second):
		t.Fatal("no notification received")
	}

	client := influxdb2.NewClient(influxURL, util.InfluxToken)
	defer client.Close()
	query := fmt.Sprintf(`from(bucket:%q) |> range(start: -1h) |> filter(fn: (r) => r._measurement == "recommendation")`, util.InfluxBucket)
	require.Eventually(t, func() bool {
		res, err := client.QueryAPI(util.InfluxOrg).Query(ctx, query)
		if err != nil {
			return false
		}
		defer res.Close()
		return res.Next()
	}, 10*time.Second, 200*time.Millisecond)

	stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not stop")
	}
}
