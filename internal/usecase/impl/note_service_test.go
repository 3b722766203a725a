package impl

import (
	"context"
	"testing"

	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/service"
	"casevault/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteServiceCreateNote(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.noteService()

	note, err := svc.CreateNote(context.Background(), usecase.CreateNoteInput{
		CaseID:   "c1",
		Category: "general",
		Content:  "Spoke with applicant about missing documents",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "c1", note.CaseID)

	doc := f.tx.document()
	require.Len(t, doc.Notes, 1)
	assert.Equal(t, note.ID, doc.Notes[0].ID)
	assert.Contains(t, f.eventTypes(), service.EventNoteCreated)
}

func TestNoteServiceCreateNoteValidation(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.noteService()
	ctx := context.Background()

	_, err := svc.CreateNote(ctx, usecase.CreateNoteInput{CaseID: "c1", Category: "general"})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = svc.CreateNote(ctx, usecase.CreateNoteInput{CaseID: "missing", Category: "general", Content: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrCaseNotFound)

	assert.Empty(t, f.tx.document().Notes)
}

func TestNoteServiceUpdateNote(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.noteService()
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, usecase.CreateNoteInput{CaseID: "c1", Category: "general", Content: "original"})
	require.NoError(t, err)

	content := "revised after callback"
	updated, err := svc.UpdateNote(ctx, note.ID, usecase.UpdateNoteInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)
	assert.Equal(t, "general", updated.Category)
	assert.Equal(t, content, f.store.GetNote(note.ID).Content)
}

func TestNoteServiceUpdateNoteRollsBackOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.noteService()
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, usecase.CreateNoteInput{CaseID: "c1", Category: "general", Content: "original"})
	require.NoError(t, err)
	before := f.store.GetNote(note.ID)

	f.tx.failErr = assert.AnError
	content := "never persisted"
	_, err = svc.UpdateNote(ctx, note.ID, usecase.UpdateNoteInput{Content: &content})
	require.Error(t, err)
	f.tx.failErr = nil

	assert.Equal(t, before, f.store.GetNote(note.ID))
	assert.Equal(t, "original", f.tx.document().Notes[0].Content)
}

func TestNoteServiceUpdateNoteNotFound(t *testing.T) {
	f := newFixture(t)
	svc := f.noteService()

	content := "x"
	_, err := svc.UpdateNote(context.Background(), "missing", usecase.UpdateNoteInput{Content: &content})
	assert.ErrorIs(t, err, domainerrors.ErrNoteNotFound)
}

func TestNoteServiceDeleteNoteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.noteService()
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, usecase.CreateNoteInput{CaseID: "c1", Category: "general", Content: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(ctx, note.ID))
	assert.Nil(t, f.store.GetNote(note.ID))
	assert.Empty(t, f.tx.document().Notes)

	require.NoError(t, svc.DeleteNote(ctx, note.ID))
}

func TestNoteServiceListByCase(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	f.seedCase(t, "c2", "MCN-200", entity.CaseStatusActive)
	svc := f.noteService()
	ctx := context.Background()

	_, err := svc.CreateNote(ctx, usecase.CreateNoteInput{CaseID: "c1", Category: "general", Content: "a"})
	require.NoError(t, err)
	_, err = svc.CreateNote(ctx, usecase.CreateNoteInput{CaseID: "c2", Category: "general", Content: "b"})
	require.NoError(t, err)

	notes, err := svc.ListByCase(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "a", notes[0].Content)
}
