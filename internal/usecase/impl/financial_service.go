package impl

import (
	"context"
	"log/slog"
	"time"

	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/repository"
	"casevault/internal/domain/service"
	"casevault/internal/infra/persistence/vault"
	"casevault/internal/state"
	"casevault/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type financialService struct {
	financialRepo repository.FinancialRepository
	tx            repository.DocumentTransaction
	queue         *vault.CoalescingQueue
	store         *state.Store
	bus           service.EventBus
	logger        *slog.Logger
}

// FinancialServiceParams holds dependencies for FinancialService, injected by Fx.
type FinancialServiceParams struct {
	fx.In

	FinancialRepo repository.FinancialRepository
	Tx            repository.DocumentTransaction
	Queue         *vault.CoalescingQueue
	Store         *state.Store
	Bus           service.EventBus
	Logger        *slog.Logger
}

// NewFinancialService creates a new financial item service instance
func NewFinancialService(params FinancialServiceParams) usecase.FinancialUsecase {
	return &financialService{
		financialRepo: params.FinancialRepo,
		tx:            params.Tx,
		queue:         params.Queue,
		store:         params.Store,
		bus:           params.Bus,
		logger:        params.Logger,
	}
}

func (s *financialService) ListByCase(ctx context.Context, caseID string) ([]*entity.FinancialItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}
	if s.store.GetCase(caseID) == nil {
		return nil, domainerrors.ErrCaseNotFound
	}

	return s.store.FinancialItemsByCase(caseID), nil
}

func (s *financialService) GetItem(ctx context.Context, id string) (*entity.FinancialItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	item := s.store.GetFinancialItem(id)
	if item == nil {
		return nil, domainerrors.ErrFinancialItemNotFound
	}

	return item, nil
}

func (s *financialService) CreateItem(ctx context.Context, input usecase.CreateFinancialItemInput) (*entity.FinancialItem, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !input.Category.Valid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown category " + string(input.Category))
	}
	if s.store.GetCase(input.CaseID) == nil {
		return nil, domainerrors.ErrCaseNotFound
	}

	now := time.Now()
	item := &entity.FinancialItem{
		ID:                 uuid.NewString(),
		CaseID:             input.CaseID,
		Category:           input.Category,
		Description:        input.Description,
		Amount:             input.Amount,
		Frequency:          input.Frequency,
		Location:           input.Location,
		AccountNumber:      input.AccountNumber,
		VerificationStatus: entity.VerificationNeeded,
		VerificationSource: input.VerificationSource,
		Notes:              input.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	committed := s.store.UpsertFinancialItem(item)

	if err := s.financialRepo.Save(ctx, committed); err != nil {
		s.store.RemoveFinancialItem(committed.ID)

		return nil, errors.Wrap(err, "failed to persist financial item")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventFinancialItemCreated), "financial-item", committed.ID, input.Description)
	publish(ctx, s.bus, service.EventFinancialItemCreated, committed.ID, committed.Clone())

	return committed, nil
}

func (s *financialService) UpdateItem(ctx context.Context, id string, input usecase.UpdateFinancialItemInput) (*entity.FinancialItem, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	prev := s.store.GetFinancialItem(id)
	if prev == nil {
		return nil, domainerrors.ErrFinancialItemNotFound
	}

	next := prev.Clone()
	if input.Description != nil {
		next.Description = *input.Description
	}
	if input.Amount != nil {
		next.Amount = *input.Amount
	}
	if input.Frequency != nil {
		next.Frequency = *input.Frequency
	}
	if input.Location != nil {
		next.Location = *input.Location
	}
	if input.AccountNumber != nil {
		next.AccountNumber = *input.AccountNumber
	}
	if input.VerificationSource != nil {
		next.VerificationSource = *input.VerificationSource
	}
	if input.Notes != nil {
		next.Notes = *input.Notes
	}
	next.UpdatedAt = time.Now()

	committed := s.store.UpsertFinancialItem(next)

	if err := s.financialRepo.Save(ctx, committed); err != nil {
		s.store.RestoreFinancialItem(id, prev)

		return nil, errors.Wrap(err, "failed to persist financial item update")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventFinancialItemUpdated), "financial-item", id, "")
	publish(ctx, s.bus, service.EventFinancialItemUpdated, id, committed.Clone())

	return committed, nil
}

// SetVerificationStatus applies the change to the cache immediately and
// queues the persist behind the coalescing queue, so a worker clicking
// through states lands a single write with the final value. The event and
// any rollback happen when the surviving write completes.
func (s *financialService) SetVerificationStatus(ctx context.Context, id string, status entity.VerificationStatus) (*entity.FinancialItem, error) {
	switch status {
	case entity.VerificationNeeded, entity.VerificationRequested, entity.VerificationVerified, entity.VerificationAVSPending:
	default:
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown verification status " + string(status))
	}

	prev := s.store.GetFinancialItem(id)
	if prev == nil {
		return nil, domainerrors.ErrFinancialItemNotFound
	}

	next := prev.Clone()
	next.VerificationStatus = status
	next.UpdatedAt = time.Now()

	committed := s.store.UpsertFinancialItem(next)
	persisted := committed.Clone()

	s.queue.Enqueue("financial-item/"+id, func(doc *entity.Document) error {
		for i := range doc.Financials {
			if doc.Financials[i].ID == id {
				doc.Financials[i] = *persisted

				return nil
			}
		}

		return repository.ErrNotFound
	}, func(err error) {
		if err != nil {
			s.store.RestoreFinancialItem(id, prev)

			return
		}
		recordActivity(context.Background(), s.tx, s.logger,
			string(service.EventFinancialItemUpdated), "financial-item", id, string(status))
		publish(context.Background(), s.bus, service.EventFinancialItemUpdated, id, persisted.Clone())
	})

	return committed, nil
}

func (s *financialService) DeleteItem(ctx context.Context, id string) error {
	prev := s.store.GetFinancialItem(id)
	if prev == nil {
		return s.financialRepo.Delete(ctx, id)
	}

	s.store.RemoveFinancialItem(id)

	if err := s.financialRepo.Delete(ctx, id); err != nil {
		s.store.RestoreFinancialItem(id, prev)

		return errors.Wrap(err, "failed to delete financial item")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventFinancialItemDeleted), "financial-item", id, "")
	publish(ctx, s.bus, service.EventFinancialItemDeleted, id, prev)

	return nil
}
