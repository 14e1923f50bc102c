// Package events defines the advisor events emitted on the event bus.
//
// Available event types:
//   - RecommendationEvent: ranked start hours computed for a request
//   - SavingsEvent: schedule comparison result
//   - CatalogEvent: appliance or tariff change
package events
