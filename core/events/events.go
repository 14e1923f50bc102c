package events

import (
	"time"

	"github.com/kilianp07/tariffopt/core/model"
)

// Event is any value published on the advisor event bus.
type Event interface {
	OccurredAt() time.Time
}

// RecommendationEvent is published after an optimization request.
type RecommendationEvent struct {
	RequestID       string
	Recommendations []model.Recommendation
	Time            time.Time
}

func (e RecommendationEvent) OccurredAt() time.Time { return e.Time }

// SavingsEvent is published after a savings comparison.
type SavingsEvent struct {
	RequestID string
	Report    model.SavingsReport
	Time      time.Time
}

func (e SavingsEvent) OccurredAt() time.Time { return e.Time }

// CatalogAction names a change to the stored records.
type CatalogAction string

const (
	ApplianceAdded   CatalogAction = "appliance_added"
	ApplianceDeleted CatalogAction = "appliance_deleted"
	TariffReplaced   CatalogAction = "tariff_replaced"
)

// CatalogEvent is published when the appliance list or the tariff changes.
type CatalogEvent struct {
	Action      CatalogAction
	ApplianceID int
	Time        time.Time
}

func (e CatalogEvent) OccurredAt() time.Time { return e.Time }
