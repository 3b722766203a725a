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

type caseService struct {
	caseRepo repository.CaseRepository
	tx       repository.DocumentTransaction
	store    *state.Store
	bus      service.EventBus
	logger   *slog.Logger
}

// CaseServiceParams holds dependencies for CaseService, injected by Fx.
type CaseServiceParams struct {
	fx.In

	CaseRepo repository.CaseRepository
	Tx       repository.DocumentTransaction
	Store    *state.Store
	Bus      service.EventBus
	Logger   *slog.Logger
}

// NewCaseService creates a new case service instance
func NewCaseService(params CaseServiceParams) usecase.CaseUsecase {
	return &caseService{
		caseRepo: params.CaseRepo,
		tx:       params.Tx,
		store:    params.Store,
		bus:      params.Bus,
		logger:   params.Logger,
	}
}

func (s *caseService) ListCases(ctx context.Context) ([]*entity.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	return s.store.AllCases(), nil
}

func (s *caseService) GetCase(ctx context.Context, id string) (*entity.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	c := s.store.GetCase(id)
	if c == nil {
		return nil, domainerrors.ErrCaseNotFound
	}

	return c, nil
}

func (s *caseService) GetCaseByMCN(ctx context.Context, mcn string) (*entity.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	c := s.store.GetCaseByMCN(mcn)
	if c == nil {
		return nil, domainerrors.ErrCaseNotFound
	}

	return c, nil
}

// CreateCase opens a new case with its person in one atomic document
// mutation; a failure leaves neither behind.
func (s *caseService) CreateCase(ctx context.Context, input usecase.CreateCaseInput) (*entity.Case, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if existing := s.store.GetCaseByMCN(input.MCN); existing != nil {
		return nil, domainerrors.ErrDuplicateMCN.WithDetails("mcn " + input.MCN + " already belongs to case " + existing.ID)
	}

	now := time.Now()
	person := &entity.Person{
		ID:          uuid.NewString(),
		FirstName:   input.Person.FirstName,
		LastName:    input.Person.LastName,
		Email:       input.Person.Email,
		Phone:       input.Person.Phone,
		DateOfBirth: input.Person.DateOfBirth,
		SSN:         input.Person.SSN,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, addr := range input.Person.Addresses {
		person.Addresses = append(person.Addresses, entity.Address(addr))
	}

	c := &entity.Case{
		ID:                uuid.NewString(),
		MCN:               input.MCN,
		Name:              input.Name,
		Status:            entity.CaseStatusActive,
		PersonID:          person.ID,
		CaseType:          input.CaseType,
		Priority:          input.Priority,
		ApplicationDate:   input.ApplicationDate,
		LivingArrangement: input.LivingArrangement,
		OrganizationID:    input.OrganizationID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	committedPerson := s.store.UpsertPerson(person)
	committedCase := s.store.UpsertCase(c)

	err := s.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		doc.People = append(doc.People, *committedPerson.Clone())
		doc.Cases = append(doc.Cases, *committedCase.Clone())
		doc.RecordActivity(entity.ActivityEntry{
			ID:         uuid.NewString(),
			Timestamp:  time.Now(),
			Action:     string(service.EventCaseCreated),
			EntityKind: "case",
			EntityID:   committedCase.ID,
			Details:    "mcn " + committedCase.MCN,
		})

		return nil
	})
	if err != nil {
		s.store.RemoveCase(committedCase.ID)
		s.store.RemovePerson(committedPerson.ID)

		return nil, errors.Wrap(err, "failed to persist new case")
	}

	publish(ctx, s.bus, service.EventCaseCreated, committedCase.ID, committedCase.Clone())

	return committedCase, nil
}

func (s *caseService) UpdateCase(ctx context.Context, id string, input usecase.UpdateCaseInput) (*entity.Case, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	prev := s.store.GetCase(id)
	if prev == nil {
		return nil, domainerrors.ErrCaseNotFound
	}

	next := prev.Clone()
	if input.Name != nil {
		next.Name = *input.Name
	}
	if input.CaseType != nil {
		next.CaseType = *input.CaseType
	}
	if input.Priority != nil {
		next.Priority = *input.Priority
	}
	if input.ApplicationDate != nil {
		next.ApplicationDate = *input.ApplicationDate
	}
	if input.LivingArrangement != nil {
		next.LivingArrangement = *input.LivingArrangement
	}
	if input.OrganizationID != nil {
		next.OrganizationID = *input.OrganizationID
	}
	if input.Metadata != nil {
		next.Metadata = input.Metadata
	}
	next.UpdatedAt = time.Now()

	committed := s.store.UpsertCase(next)

	if err := s.caseRepo.Save(ctx, committed); err != nil {
		s.store.RestoreCase(id, prev)

		return nil, errors.Wrap(err, "failed to persist case update")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventCaseUpdated), "case", id, "")
	publish(ctx, s.bus, service.EventCaseUpdated, id, committed.Clone())

	return committed, nil
}

// ChangeStatus enforces the status graph before anything is touched: an
// illegal transition fails with the previous state fully intact.
func (s *caseService) ChangeStatus(ctx context.Context, id string, next entity.CaseStatus) (*entity.Case, error) {
	if !next.Valid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown status " + string(next))
	}

	prev := s.store.GetCase(id)
	if prev == nil {
		return nil, domainerrors.ErrCaseNotFound
	}
	if !prev.Status.CanTransitionTo(next) {
		return nil, domainerrors.ErrIllegalStatusTransition.WithDetails(
			string(prev.Status) + " -> " + string(next))
	}

	updated := prev.Clone()
	updated.Status = next
	updated.UpdatedAt = time.Now()

	committed := s.store.UpsertCase(updated)

	if err := s.caseRepo.Save(ctx, committed); err != nil {
		s.store.RestoreCase(id, prev)

		return nil, errors.Wrap(err, "failed to persist status change")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventCaseStatusChanged), "case", id,
		string(prev.Status)+" -> "+string(next))
	publish(ctx, s.bus, service.EventCaseStatusChanged, id, committed.Clone())

	return committed, nil
}

// DeleteCase removes the case and cascades to everything it owns. Deleting
// an id that is already gone succeeds without effect.
func (s *caseService) DeleteCase(ctx context.Context, id string) error {
	prev := s.store.GetCase(id)
	if prev == nil {
		// Still funnel through the repository so a cache miss cannot
		// leave a stale document entry behind.
		return s.caseRepo.Delete(ctx, id)
	}

	prevPerson := s.store.GetPerson(prev.PersonID)
	prevFinancials := s.store.FinancialItemsByCase(id)
	prevNotes := s.store.NotesByCase(id)

	personOrphaned := prevPerson != nil && !s.personStillReferenced(prev.PersonID, id)

	s.store.RemoveCase(id)
	if personOrphaned {
		s.store.RemovePerson(prev.PersonID)
	}
	for _, item := range prevFinancials {
		s.store.RemoveFinancialItem(item.ID)
	}
	for _, note := range prevNotes {
		s.store.RemoveNote(note.ID)
	}

	if err := s.caseRepo.Delete(ctx, id); err != nil {
		s.store.RestoreCase(id, prev)
		if personOrphaned {
			s.store.RestorePerson(prev.PersonID, prevPerson)
		}
		for _, item := range prevFinancials {
			s.store.RestoreFinancialItem(item.ID, item)
		}
		for _, note := range prevNotes {
			s.store.RestoreNote(note.ID, note)
		}

		return errors.Wrap(err, "failed to delete case")
	}

	// Alerts outlive the case; unmatch them in the cache to mirror the
	// document cascade.
	for _, alert := range s.store.AllAlerts() {
		if alert.CaseID == id {
			unmatched := alert.Clone()
			unmatched.CaseID = ""
			s.store.RestoreAlert(alert.ID, unmatched)
		}
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventCaseDeleted), "case", id, "mcn "+prev.MCN)
	publish(ctx, s.bus, service.EventCaseDeleted, id, prev)

	return nil
}

func (s *caseService) personStillReferenced(personID, excludingCaseID string) bool {
	for _, c := range s.store.AllCases() {
		if c.ID != excludingCaseID && c.PersonID == personID {
			return true
		}
	}

	return false
}
