// Package impl implements the application use cases. Every mutation follows
// the same shape: validate, snapshot, apply optimistically to the state
// cache, persist through the document transaction, then either publish the
// domain event or roll the cache back to the snapshot.
package impl

import (
	"context"
	"log/slog"
	"time"

	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/repository"
	"casevault/internal/domain/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// validateInput runs struct validation and maps failures onto the domain
// validation error.
func validateInput(input any) error {
	if err := validate.Struct(input); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

// recordActivity appends one entry to the document's activity log. The log
// is advisory; a failure is logged and swallowed so it can never fail the
// mutation that already committed.
func recordActivity(ctx context.Context, tx repository.DocumentTransaction, logger *slog.Logger, action, kind, id, details string) {
	err := tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		doc.RecordActivity(entity.ActivityEntry{
			ID:         uuid.NewString(),
			Timestamp:  time.Now(),
			Action:     action,
			EntityKind: kind,
			EntityID:   id,
			Details:    details,
		})

		return nil
	})
	if err != nil {
		logger.Warn("activity log write failed",
			slog.String("action", action),
			slog.Any("error", err))
	}
}

// publish sends a domain event after a successful persist.
func publish(ctx context.Context, bus service.EventBus, eventType service.EventType, aggregateID string, payload any) {
	_ = bus.Publish(ctx, service.Event{
		Type:        eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now(),
	})
}
