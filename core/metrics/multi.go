package metrics

import (
	"errors"
	"time"

	"github.com/kilianp07/tariffopt/core/model"
)

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRecommendations forwards to every sink and joins their errors.
func (m *MultiSink) RecordRecommendations(recs []model.Recommendation, at time.Time) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordRecommendations(recs, at))
	}
	return errors.Join(errs...)
}

// RecordSavings forwards to sinks implementing SavingsRecorder.
func (m *MultiSink) RecordSavings(rep model.SavingsReport, at time.Time) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(SavingsRecorder); ok {
			errs = append(errs, r.RecordSavings(rep, at))
		}
	}
	return errors.Join(errs...)
}

// RecordRequest forwards to sinks implementing RequestRecorder.
func (m *MultiSink) RecordRequest(ev RequestEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RequestRecorder); ok {
			errs = append(errs, r.RecordRequest(ev))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
