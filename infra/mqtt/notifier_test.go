package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffopt/core/events"
	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/internal/eventbus"
)

type message struct {
	topic    string
	payload  []byte
	retained bool
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []message
	fail     map[string]bool
}

func (f *fakePublisher) Publish(topic string, payload []byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[topic] {
		return errors.New("broker down")
	}
	f.messages = append(f.messages, message{topic, payload, retained})
	return nil
}

func (f *fakePublisher) Disconnect() {}

func (f *fakePublisher) sent() []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message(nil), f.messages...)
}

func recommendations() []model.Recommendation {
	return []model.Recommendation{
		{ApplianceID: 1, ApplianceName: "Dishwasher", BestSlots: []model.ScheduleSlot{{StartTime: "00:00"}}},
		{ApplianceID: 4, ApplianceName: "EV Charger"},
	}
}

func TestNotifierPublishesPerAppliance(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub, "home/advice/")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, n.Notify(events.RecommendationEvent{RequestID: "r1", Recommendations: recommendations(), Time: now}))

	msgs := pub.sent()
	require.Len(t, msgs, 2)
	assert.Equal(t, "home/advice/1", msgs[0].topic)
	assert.Equal(t, "home/advice/4", msgs[1].topic)
	assert.True(t, msgs[0].retained)

	var got Notification
	require.NoError(t, json.Unmarshal(msgs[0].payload, &got))
	assert.Equal(t, "r1", got.RequestID)
	assert.Equal(t, "Dishwasher", got.ApplianceName)
	assert.Equal(t, "00:00", got.BestSlots[0].StartTime)
	assert.True(t, now.Equal(got.GeneratedAt))
}

func TestNotifierContinuesAfterFailure(t *testing.T) {
	pub := &fakePublisher{fail: map[string]bool{DefaultTopicPrefix + "/1": true}}
	n := NewNotifier(pub, "")
	err := n.Notify(events.RecommendationEvent{Recommendations: recommendations()})
	assert.Error(t, err)
	msgs := pub.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, DefaultTopicPrefix+"/4", msgs[0].topic)
}

func TestNotifierRunConsumesBus(t *testing.T) {
	bus := eventbus.New[events.Event]()
	pub := &fakePublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	done := NewNotifier(pub, "").Run(ctx, bus)

	bus.Publish(events.CatalogEvent{Action: events.ApplianceAdded})
	bus.Publish(events.RecommendationEvent{Recommendations: recommendations()[:1]})

	require.Eventually(t, func() bool { return len(pub.sent()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop")
	}
}
