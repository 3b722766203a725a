package usecase

import (
	"context"

	"casevault/internal/domain/entity"
)

// CreateNoteInput carries a new note for a case.
type CreateNoteInput struct {
	CaseID   string `json:"case_id" validate:"required"`
	Category string `json:"category" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// UpdateNoteInput carries a partial note update; nil fields are untouched.
type UpdateNoteInput struct {
	Category *string `json:"category" validate:"omitempty,min=1"`
	Content  *string `json:"content" validate:"omitempty,min=1"`
}

// NoteUsecase defines the note use cases.
type NoteUsecase interface {
	ListByCase(ctx context.Context, caseID string) ([]*entity.Note, error)
	GetNote(ctx context.Context, id string) (*entity.Note, error)
	CreateNote(ctx context.Context, input CreateNoteInput) (*entity.Note, error)
	UpdateNote(ctx context.Context, id string, input UpdateNoteInput) (*entity.Note, error)

	// DeleteNote removes the note. Deleting an absent id succeeds.
	DeleteNote(ctx context.Context, id string) error
}
