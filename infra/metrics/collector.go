package metrics

import (
	"context"

	"github.com/kilianp07/tariffopt/core/events"
	coremetrics "github.com/kilianp07/tariffopt/core/metrics"
	"github.com/kilianp07/tariffopt/infra/logger"
	"github.com/kilianp07/tariffopt/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// events. It stops when the context is canceled or the bus is closed. The
// returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				var err error
				switch e := ev.(type) {
				case events.RecommendationEvent:
					err = sink.RecordRecommendations(e.Recommendations, e.Time)
				case events.SavingsEvent:
					if r, ok := sink.(coremetrics.SavingsRecorder); ok {
						err = r.RecordSavings(e.Report, e.Time)
					}
				}
				if err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}
