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

type noteService struct {
	noteRepo repository.NoteRepository
	tx       repository.DocumentTransaction
	store    *state.Store
	bus      service.EventBus
	logger   *slog.Logger
}

// NoteServiceParams holds dependencies for NoteService, injected by Fx.
type NoteServiceParams struct {
	fx.In

	NoteRepo repository.NoteRepository
	Tx       repository.DocumentTransaction
	Store    *state.Store
	Bus      service.EventBus
	Logger   *slog.Logger
}

// NewNoteService creates a new note service instance
func NewNoteService(params NoteServiceParams) usecase.NoteUsecase {
	return &noteService{
		noteRepo: params.NoteRepo,
		tx:       params.Tx,
		store:    params.Store,
		bus:      params.Bus,
		logger:   params.Logger,
	}
}

func (s *noteService) ListByCase(ctx context.Context, caseID string) ([]*entity.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}
	if s.store.GetCase(caseID) == nil {
		return nil, domainerrors.ErrCaseNotFound
	}

	return s.store.NotesByCase(caseID), nil
}

func (s *noteService) GetNote(ctx context.Context, id string) (*entity.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	note := s.store.GetNote(id)
	if note == nil {
		return nil, domainerrors.ErrNoteNotFound
	}

	return note, nil
}

func (s *noteService) CreateNote(ctx context.Context, input usecase.CreateNoteInput) (*entity.Note, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if s.store.GetCase(input.CaseID) == nil {
		return nil, domainerrors.ErrCaseNotFound
	}

	now := time.Now()
	note := &entity.Note{
		ID:        uuid.NewString(),
		CaseID:    input.CaseID,
		Category:  input.Category,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	committed := s.store.UpsertNote(note)

	if err := s.noteRepo.Save(ctx, committed); err != nil {
		s.store.RemoveNote(committed.ID)

		return nil, errors.Wrap(err, "failed to persist note")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventNoteCreated), "note", committed.ID, input.Category)
	publish(ctx, s.bus, service.EventNoteCreated, committed.ID, committed.Clone())

	return committed, nil
}

func (s *noteService) UpdateNote(ctx context.Context, id string, input usecase.UpdateNoteInput) (*entity.Note, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	prev := s.store.GetNote(id)
	if prev == nil {
		return nil, domainerrors.ErrNoteNotFound
	}

	next := prev.Clone()
	if input.Category != nil {
		next.Category = *input.Category
	}
	if input.Content != nil {
		next.Content = *input.Content
	}
	next.UpdatedAt = time.Now()

	committed := s.store.UpsertNote(next)

	if err := s.noteRepo.Save(ctx, committed); err != nil {
		s.store.RestoreNote(id, prev)

		return nil, errors.Wrap(err, "failed to persist note update")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventNoteUpdated), "note", id, "")
	publish(ctx, s.bus, service.EventNoteUpdated, id, committed.Clone())

	return committed, nil
}

func (s *noteService) DeleteNote(ctx context.Context, id string) error {
	prev := s.store.GetNote(id)
	if prev == nil {
		return s.noteRepo.Delete(ctx, id)
	}

	s.store.RemoveNote(id)

	if err := s.noteRepo.Delete(ctx, id); err != nil {
		s.store.RestoreNote(id, prev)

		return errors.Wrap(err, "failed to delete note")
	}

	recordActivity(ctx, s.tx, s.logger, string(service.EventNoteDeleted), "note", id, "")
	publish(ctx, s.bus, service.EventNoteDeleted, id, prev)

	return nil
}
