// Package service declares the domain service contracts implemented by the
// infrastructure layer.
package service

import (
	"context"
	"time"
)

// EventType identifies a kind of domain event.
type EventType string

// Domain events published by use cases strictly after persistence succeeds.
const (
	EventCaseCreated          EventType = "case.created"
	EventCaseUpdated          EventType = "case.updated"
	EventCaseStatusChanged    EventType = "case.status-changed"
	EventCaseDeleted          EventType = "case.deleted"
	EventPersonUpdated        EventType = "person.updated"
	EventFinancialItemCreated EventType = "financial-item.created"
	EventFinancialItemUpdated EventType = "financial-item.updated"
	EventFinancialItemDeleted EventType = "financial-item.deleted"
	EventNoteCreated          EventType = "note.created"
	EventNoteUpdated          EventType = "note.updated"
	EventNoteDeleted          EventType = "note.deleted"
	EventAlertCreated         EventType = "alert.created"
	EventAlertUpdated         EventType = "alert.updated"
	EventAlertResolved        EventType = "alert.resolved"
	EventAlertDeleted         EventType = "alert.deleted"
	EventLegacyImported       EventType = "vault.legacy-imported"
	EventExternalChange       EventType = "vault.external-change"
)

// Event is the payload delivered to subscribers.
type Event struct {
	Type        EventType         // What happened.
	AggregateID string            // The id of the entity the event is about.
	Payload     any               // Committed entity value (a copy, safe to retain).
	Metadata    map[string]string // Optional correlation data (request id etc.).
	OccurredAt  time.Time         // When the event was published.
}

// EventHandler consumes one event. A failing handler never affects other
// handlers for the same event, nor the publisher.
type EventHandler func(ctx context.Context, event Event) error

// UnsubscribeFunc removes a previously registered handler.
type UnsubscribeFunc func()

// EventBus is the decoupled publish/subscribe channel between use cases and
// presentation-side subscribers. Publish returns after every handler has run
// (or failed in isolation); there is no ordering guarantee across handlers.
type EventBus interface {
	Subscribe(eventType EventType, handler EventHandler) UnsubscribeFunc
	Publish(ctx context.Context, event Event) error
}
