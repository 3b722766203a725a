// Package eventbus provides the in-process domain event bus. Handlers run
// in isolation: a failing or panicking handler is logged and never stops
// the remaining handlers, nor surfaces to the publisher.
package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"casevault/internal/domain/service"

	"go.uber.org/fx"
)

type subscription struct {
	id      int
	handler service.EventHandler
}

// Bus is the concrete in-process event bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[service.EventType][]subscription
	nextID   int
	logger   *slog.Logger
}

// Params holds dependencies for the bus, injected by Fx.
type Params struct {
	fx.In

	Logger *slog.Logger
}

// New creates an empty bus.
func New(params Params) service.EventBus {
	return &Bus{
		handlers: make(map[service.EventType][]subscription),
		logger:   params.Logger,
	}
}

// Subscribe registers a handler for one event type and returns its
// unsubscribe func. Multiple handlers per type are supported.
func (b *Bus) Subscribe(eventType service.EventType, handler service.EventHandler) service.UnsubscribeFunc {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[eventType]
		for i, sub := range subs {
			if sub.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)

				break
			}
		}
	}
}

// Publish delivers the event to every handler registered for its type and
// returns once all have completed. Handler errors and panics are logged,
// not propagated; there is no ordering guarantee across handlers.
func (b *Bus) Publish(ctx context.Context, event service.Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		b.invoke(ctx, sub, event)
	}

	return nil
}

func (b *Bus) invoke(ctx context.Context, sub subscription, event service.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("event_type", string(event.Type)),
				slog.String("aggregate_id", event.AggregateID),
				slog.Any("panic", r),
			)
		}
	}()

	if err := sub.handler(ctx, event); err != nil {
		b.logger.Warn("event handler failed",
			slog.String("event_type", string(event.Type)),
			slog.String("aggregate_id", event.AggregateID),
			slog.Any("error", err),
		)
	}
}
