package metrics

import (
	"time"

	"github.com/kilianp07/tariffopt/core/model"
)

// MetricsSink records optimization results.
type MetricsSink interface {
	RecordRecommendations(recs []model.Recommendation, at time.Time) error
}

// SavingsRecorder records savings comparisons.
type SavingsRecorder interface {
	RecordSavings(rep model.SavingsReport, at time.Time) error
}

// RequestEvent describes one served API request.
type RequestEvent struct {
	Route    string
	Method   string
	Status   int
	Duration time.Duration
}

// RequestRecorder records API request outcomes.
type RequestRecorder interface {
	RecordRequest(ev RequestEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRecommendations([]model.Recommendation, time.Time) error { return nil }
func (NopSink) RecordSavings(model.SavingsReport, time.Time) error            { return nil }
func (NopSink) RecordRequest(RequestEvent) error                              { return nil }
