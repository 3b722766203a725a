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

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type personService struct {
	personRepo repository.PersonRepository
	tx         repository.DocumentTransaction
	store      *state.Store
	bus        service.EventBus
	logger     *slog.Logger
}

// PersonServiceParams holds dependencies for PersonService, injected by Fx.
type PersonServiceParams struct {
	fx.In

	PersonRepo repository.PersonRepository
	Tx         repository.DocumentTransaction
	Store      *state.Store
	Bus        service.EventBus
	Logger     *slog.Logger
}

// NewPersonService creates a new person service instance
func NewPersonService(params PersonServiceParams) usecase.PersonUsecase {
	return &personService{
		personRepo: params.PersonRepo,
		tx:         params.Tx,
		store:      params.Store,
		bus:        params.Bus,
		logger:     params.Logger,
	}
}

func (s *personService) ListPeople(ctx context.Context) ([]*entity.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	return s.store.AllPeople(), nil
}

func (s *personService) GetPerson(ctx context.Context, id string) (*entity.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	p := s.store.GetPerson(id)
	if p == nil {
		return nil, domainerrors.ErrPersonNotFound
	}

	return p, nil
}

func (s *personService) UpdatePerson(ctx context.Context, id string, input usecase.UpdatePersonInput) (*entity.Person, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	prev := s.store.GetPerson(id)
	if prev == nil {
		return nil, domainerrors.ErrPersonNotFound
	}

	next := prev.Clone()
	if input.FirstName != nil {
		next.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		next.LastName = *input.LastName
	}
	if input.Email != nil {
		next.Email = *input.Email
	}
	if input.Phone != nil {
		next.Phone = *input.Phone
	}
	if input.DateOfBirth != nil {
		next.DateOfBirth = *input.DateOfBirth
	}
	if input.SSN != nil {
		next.SSN = *input.SSN
	}
	if input.Addresses != nil {
		next.Addresses = next.Addresses[:0]
		for _, addr := range input.Addresses {
			next.Addresses = append(next.Addresses, entity.Address(addr))
		}
	}
	next.UpdatedAt = time.Now()

	committed := s.store.UpsertPerson(next)

	if err := s.personRepo.Save(ctx, committed); err != nil {
		s.store.RestorePerson(id, prev)

		return nil, errors.Wrap(err, "failed to persist person update")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventPersonUpdated), "person", id, "")
	publish(ctx, s.bus, service.EventPersonUpdated, id, committed.Clone())

	return committed, nil
}
