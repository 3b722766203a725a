package eventbus

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"casevault/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() service.EventBus {
	return New(Params{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := newTestBus()

	var got []service.Event
	bus.Subscribe(service.EventCaseCreated, func(_ context.Context, event service.Event) error {
		got = append(got, event)

		return nil
	})

	err := bus.Publish(context.Background(), service.Event{
		Type:        service.EventCaseCreated,
		AggregateID: "c1",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].AggregateID)
	assert.False(t, got[0].OccurredAt.IsZero(), "publish stamps OccurredAt when unset")
}

func TestBusFiltersByEventType(t *testing.T) {
	bus := newTestBus()

	var calls int
	bus.Subscribe(service.EventCaseCreated, func(context.Context, service.Event) error {
		calls++

		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), service.Event{Type: service.EventCaseDeleted, AggregateID: "c1"}))
	assert.Zero(t, calls)
}

func TestBusMultipleHandlersPerType(t *testing.T) {
	bus := newTestBus()

	var first, second bool
	bus.Subscribe(service.EventAlertCreated, func(context.Context, service.Event) error {
		first = true

		return nil
	})
	bus.Subscribe(service.EventAlertCreated, func(context.Context, service.Event) error {
		second = true

		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), service.Event{Type: service.EventAlertCreated}))
	assert.True(t, first)
	assert.True(t, second)
}

func TestBusHandlerFailureDoesNotStopOthers(t *testing.T) {
	bus := newTestBus()

	var survived bool
	bus.Subscribe(service.EventCaseUpdated, func(context.Context, service.Event) error {
		return assert.AnError
	})
	bus.Subscribe(service.EventCaseUpdated, func(context.Context, service.Event) error {
		panic("handler blew up")
	})
	bus.Subscribe(service.EventCaseUpdated, func(context.Context, service.Event) error {
		survived = true

		return nil
	})

	err := bus.Publish(context.Background(), service.Event{Type: service.EventCaseUpdated})
	require.NoError(t, err, "handler failures never surface to the publisher")
	assert.True(t, survived)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := newTestBus()

	var calls int
	unsubscribe := bus.Subscribe(service.EventCaseCreated, func(context.Context, service.Event) error {
		calls++

		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), service.Event{Type: service.EventCaseCreated}))
	unsubscribe()
	require.NoError(t, bus.Publish(context.Background(), service.Event{Type: service.EventCaseCreated}))

	assert.Equal(t, 1, calls)
}
