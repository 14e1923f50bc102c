package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/tariffopt/core/metrics"
	"github.com/kilianp07/tariffopt/core/model"
)

// PromSink exposes advisor results as Prometheus metrics.
type PromSink struct {
	recommendations *prometheus.CounterVec
	bestCost        *prometheus.GaugeVec
	peakSavings     *prometheus.GaugeVec
	dailySavings    prometheus.Gauge
	savingsPct      prometheus.Gauge
	requests        *prometheus.HistogramVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_recommendations_total",
			Help: "Number of recommendations computed per appliance",
		}, []string{"appliance"}),
		bestCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "advisor_best_start_cost",
			Help: "Cost of the cheapest start hour of the last recommendation",
		}, []string{"appliance", "start_time"}),
		peakSavings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "advisor_savings_vs_peak",
			Help: "Saving of the cheapest start hour against the most expensive one",
		}, []string{"appliance"}),
		dailySavings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "advisor_projected_daily_savings",
			Help: "Daily savings of the last schedule comparison",
		}),
		savingsPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "advisor_projected_savings_percent",
			Help: "Savings percentage of the last schedule comparison",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "advisor_http_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	var err error
	if s.recommendations, err = register(reg, s.recommendations); err != nil {
		return nil, err
	}
	if s.bestCost, err = register(reg, s.bestCost); err != nil {
		return nil, err
	}
	if s.peakSavings, err = register(reg, s.peakSavings); err != nil {
		return nil, err
	}
	if s.dailySavings, err = register(reg, s.dailySavings); err != nil {
		return nil, err
	}
	if s.savingsPct, err = register(reg, s.savingsPct); err != nil {
		return nil, err
	}
	if s.requests, err = register(reg, s.requests); err != nil {
		return nil, err
	}
	return s, nil
}

// register reuses an already registered collector of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRecommendations updates the per appliance gauges.
func (s *PromSink) RecordRecommendations(recs []model.Recommendation, _ time.Time) error {
	for _, r := range recs {
		s.recommendations.WithLabelValues(r.ApplianceName).Inc()
		if len(r.BestSlots) == 0 {
			continue
		}
		best := r.BestSlots[0]
		s.bestCost.DeletePartialMatch(prometheus.Labels{"appliance": r.ApplianceName})
		s.bestCost.WithLabelValues(r.ApplianceName, best.StartTime).Set(best.Cost)
		s.peakSavings.WithLabelValues(r.ApplianceName).Set(best.SavingsVsPeak)
	}
	return nil
}

// RecordSavings sets the savings gauges.
func (s *PromSink) RecordSavings(rep model.SavingsReport, _ time.Time) error {
	s.dailySavings.Set(rep.DailySavings)
	s.savingsPct.Set(rep.SavingsPercentage)
	return nil
}

// RecordRequest observes the request latency.
func (s *PromSink) RecordRequest(ev coremetrics.RequestEvent) error {
	s.requests.WithLabelValues(ev.Route, ev.Method, strconv.Itoa(ev.Status)).Observe(ev.Duration.Seconds())
	return nil
}
