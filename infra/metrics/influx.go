package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/shopspring/decimal"

	coremetrics "github.com/kilianp07/tariffopt/core/metrics"
	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/infra/logger"
)

// InfluxSink writes advisor results to InfluxDB using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRecommendations writes one point per appliance.
func (s *InfluxSink) RecordRecommendations(recs []model.Recommendation, at time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		if len(r.AllSlots) == 0 {
			continue
		}
		best := r.AllSlots[0]
		worst := r.AllSlots[len(r.AllSlots)-1]
		p := write.NewPointWithMeasurement("recommendation").
			AddTag("appliance_id", strconv.Itoa(r.ApplianceID)).
			AddTag("appliance_name", r.ApplianceName).
			AddTag("best_start", best.StartTime).
			AddField("best_cost", round3(best.Cost)).
			AddField("worst_cost", round3(worst.Cost)).
			AddField("savings_vs_peak", round3(best.SavingsVsPeak)).
			AddField("power_kw", round3(r.PowerKW)).
			SetTime(at)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordSavings writes a savings comparison point.
func (s *InfluxSink) RecordSavings(rep model.SavingsReport, at time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("savings_report").
		AddField("current_cost", rep.CurrentCost).
		AddField("optimized_cost", rep.OptimizedCost).
		AddField("daily_savings", rep.DailySavings).
		AddField("co2_reduction_kg", rep.CO2ReductionKg).
		AddField("savings_percentage", rep.SavingsPercentage).
		SetTime(at)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(v float64) float64 {
	return decimal.NewFromFloat(v).Round(3).InexactFloat64()
}
