package impl

import (
	"context"
	"log/slog"
	"time"

	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/repository"
	"casevault/internal/domain/service"
	"casevault/internal/state"
	"casevault/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type alertService struct {
	alertRepo repository.AlertRepository
	tx        repository.DocumentTransaction
	store     *state.Store
	bus       service.EventBus
	logger    *slog.Logger
}

// AlertServiceParams holds dependencies for AlertService, injected by Fx.
type AlertServiceParams struct {
	fx.In

	AlertRepo repository.AlertRepository
	Tx        repository.DocumentTransaction
	Store     *state.Store
	Bus       service.EventBus
	Logger    *slog.Logger
}

// NewAlertService creates a new alert service instance
func NewAlertService(params AlertServiceParams) usecase.AlertUsecase {
	return &alertService{
		alertRepo: params.AlertRepo,
		tx:        params.Tx,
		store:     params.Store,
		bus:       params.Bus,
		logger:    params.Logger,
	}
}

func (s *alertService) ListAlerts(ctx context.Context) ([]*entity.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	return s.store.AllAlerts(), nil
}

func (s *alertService) GetAlert(ctx context.Context, id string) (*entity.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	alert := s.store.GetAlert(id)
	if alert == nil {
		return nil, domainerrors.ErrAlertNotFound
	}

	return alert, nil
}

// ImportAlerts records the whole batch in one bulk document mutation.
// Alerts with an MCN matching an existing case are linked; the rest stay
// unmatched with an empty case id.
func (s *alertService) ImportAlerts(ctx context.Context, inputs []usecase.ImportAlertInput) (*usecase.ImportAlertsResult, error) {
	if len(inputs) == 0 {
		return &usecase.ImportAlertsResult{}, nil
	}

	now := time.Now()
	alerts := make([]*entity.Alert, 0, len(inputs))
	result := &usecase.ImportAlertsResult{}

	for _, input := range inputs {
		if err := validateInput(input); err != nil {
			return nil, err
		}

		alert := &entity.Alert{
			ID:          uuid.NewString(),
			MCN:         input.MCN,
			Type:        input.Type,
			Description: input.Description,
			Status:      entity.AlertStatusOpen,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if input.MCN != "" {
			if matched := s.store.GetCaseByMCN(input.MCN); matched != nil {
				alert.CaseID = matched.ID
				result.Matched++
			} else {
				result.Unmatched++
			}
		} else {
			result.Unmatched++
		}
		alerts = append(alerts, alert)
	}

	err := s.tx.Execute(ctx, repository.WriteOptions{Bulk: true}, func(doc *entity.Document) error {
		for _, alert := range alerts {
			doc.Alerts = append(doc.Alerts, *alert.Clone())
		}
		doc.RecordActivity(entity.ActivityEntry{
			ID:         uuid.NewString(),
			Timestamp:  time.Now(),
			Action:     string(service.EventAlertCreated),
			EntityKind: "alert",
			EntityID:   "",
			Details:    "imported batch",
		})

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist alert import")
	}

	for _, alert := range alerts {
		s.store.UpsertAlert(alert)
		publish(ctx, s.bus, service.EventAlertCreated, alert.ID, alert.Clone())
	}
	result.Imported = len(alerts)

	return result, nil
}

func (s *alertService) LinkAlert(ctx context.Context, id, caseID string) (*entity.Alert, error) {
	prev := s.store.GetAlert(id)
	if prev == nil {
		return nil, domainerrors.ErrAlertNotFound
	}
	if s.store.GetCase(caseID) == nil {
		return nil, domainerrors.ErrCaseNotFound
	}

	next := prev.Clone()
	next.CaseID = caseID
	next.UpdatedAt = time.Now()

	committed := s.store.UpsertAlert(next)

	if err := s.alertRepo.Save(ctx, committed); err != nil {
		s.store.RestoreAlert(id, prev)

		return nil, errors.Wrap(err, "failed to persist alert link")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventAlertUpdated), "alert", id, "linked to case "+caseID)
	publish(ctx, s.bus, service.EventAlertUpdated, id, committed.Clone())

	return committed, nil
}

// ResolveAlert closes an open alert. Resolving twice is a no-op that
// returns the already resolved alert.
func (s *alertService) ResolveAlert(ctx context.Context, id, notes string) (*entity.Alert, error) {
	prev := s.store.GetAlert(id)
	if prev == nil {
		return nil, domainerrors.ErrAlertNotFound
	}
	if prev.Status == entity.AlertStatusResolved {
		return prev, nil
	}

	now := time.Now()
	next := prev.Clone()
	next.Status = entity.AlertStatusResolved
	next.ResolvedAt = &now
	next.ResolutionNotes = notes
	next.UpdatedAt = now

	committed := s.store.UpsertAlert(next)

	if err := s.alertRepo.Save(ctx, committed); err != nil {
		s.store.RestoreAlert(id, prev)

		return nil, errors.Wrap(err, "failed to persist alert resolution")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventAlertResolved), "alert", id, notes)
	publish(ctx, s.bus, service.EventAlertResolved, id, committed.Clone())

	return committed, nil
}

func (s *alertService) ReopenAlert(ctx context.Context, id string) (*entity.Alert, error) {
	prev := s.store.GetAlert(id)
	if prev == nil {
		return nil, domainerrors.ErrAlertNotFound
	}
	if prev.Status == entity.AlertStatusOpen {
		return prev, nil
	}

	next := prev.Clone()
	next.Status = entity.AlertStatusOpen
	next.ResolvedAt = nil
	next.UpdatedAt = time.Now()

	committed := s.store.UpsertAlert(next)

	if err := s.alertRepo.Save(ctx, committed); err != nil {
		s.store.RestoreAlert(id, prev)

		return nil, errors.Wrap(err, "failed to persist alert reopen")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventAlertUpdated), "alert", id, "reopened")
	publish(ctx, s.bus, service.EventAlertUpdated, id, committed.Clone())

	return committed, nil
}

func (s *alertService) DeleteAlert(ctx context.Context, id string) error {
	prev := s.store.GetAlert(id)
	if prev == nil {
		return s.alertRepo.Delete(ctx, id)
	}

	s.store.RemoveAlert(id)

	if err := s.alertRepo.Delete(ctx, id); err != nil {
		s.store.RestoreAlert(id, prev)

		return errors.Wrap(err, "failed to delete alert")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventAlertDeleted), "alert", id, "")
	publish(ctx, s.bus, service.EventAlertDeleted, id, prev)

	return nil
}
