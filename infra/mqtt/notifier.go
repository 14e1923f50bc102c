package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/tariffopt/core/events"
	"github.com/kilianp07/tariffopt/core/model"
	coremqtt "github.com/kilianp07/tariffopt/core/mqtt"
	"github.com/kilianp07/tariffopt/infra/logger"
	"github.com/kilianp07/tariffopt/internal/eventbus"
)

// Notification is the retained message published for one appliance.
type Notification struct {
	RequestID   string    `json:"request_id"`
	GeneratedAt time.Time `json:"generated_at"`
	model.Recommendation
}

// Notifier forwards recommendation events to per appliance topics.
type Notifier struct {
	pub    coremqtt.Publisher
	prefix string
	log    logger.Logger
}

// NewNotifier returns a Notifier publishing under prefix.
func NewNotifier(pub coremqtt.Publisher, prefix string) *Notifier {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Notifier{pub: pub, prefix: strings.TrimSuffix(prefix, "/"), log: logger.New("mqtt_notifier")}
}

// Topic returns the topic used for an appliance.
func (n *Notifier) Topic(applianceID int) string {
	return fmt.Sprintf("%s/%d", n.prefix, applianceID)
}

// Notify publishes one retained message per recommendation. Every
// recommendation is attempted; the first error is returned.
func (n *Notifier) Notify(ev events.RecommendationEvent) error {
	var first error
	for _, rec := range ev.Recommendations {
		payload, err := json.Marshal(Notification{RequestID: ev.RequestID, GeneratedAt: ev.Time, Recommendation: rec})
		if err != nil {
			return err
		}
		if err := n.pub.Publish(n.Topic(rec.ApplianceID), payload, true); err != nil {
			n.log.Warnf("notify appliance %d: %v", rec.ApplianceID, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Run consumes recommendation events until ctx is canceled or the bus is
// closed. The returned channel is closed when Run exits.
func (n *Notifier) Run(ctx context.Context, bus *eventbus.Bus[events.Event]) <-chan struct{} {
	done := make(chan struct{})
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
				if rec, ok := ev.(events.RecommendationEvent); ok {
					_ = n.Notify(rec)
				}
			}
		}
	}()
	return done
}
