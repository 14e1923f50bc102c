package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/tariffopt/core/metrics"
	"github.com/kilianp07/tariffopt/core/model"
)

func sampleRecommendation() model.Recommendation {
	return model.Recommendation{
		ApplianceID:   1,
		ApplianceName: "Dishwasher",
		BestSlots:     []model.ScheduleSlot{{StartTime: "00:00", Cost: 0.43, SavingsVsPeak: 0.65}},
	}
}

func TestPromSink_RecordRecommendations(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	recs := []model.Recommendation{sampleRecommendation(), {ApplianceName: "Idle"}}
	require.NoError(t, sink.RecordRecommendations(recs, time.Now()))
	require.NoError(t, sink.RecordRecommendations(recs[:1], time.Now()))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.recommendations.WithLabelValues("Dishwasher")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.recommendations.WithLabelValues("Idle")))
	assert.Equal(t, 0.43, testutil.ToFloat64(sink.bestCost.WithLabelValues("Dishwasher", "00:00")))
	assert.Equal(t, 0.65, testutil.ToFloat64(sink.peakSavings.WithLabelValues("Dishwasher")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.bestCost))
}

func TestPromSink_RecordSavingsAndRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSavings(model.SavingsReport{DailySavings: 4, SavingsPercentage: 40}, time.Now()))
	assert.Equal(t, 4.0, testutil.ToFloat64(sink.dailySavings))
	assert.Equal(t, 40.0, testutil.ToFloat64(sink.savingsPct))

	require.NoError(t, sink.RecordRequest(coremetrics.RequestEvent{Route: "/api/optimize", Method: "POST", Status: 200, Duration: time.Millisecond}))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.requests))
}

func TestNewPromSinkReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordRecommendations([]model.Recommendation{sampleRecommendation()}, time.Now()))
	assert.Equal(t, 1.0, testutil.ToFloat64(second.recommendations.WithLabelValues("Dishwasher")))
}
