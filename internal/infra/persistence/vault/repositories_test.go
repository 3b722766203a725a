package vault

import (
	"context"
	"testing"
	"time"

	"casevault/internal/domain/entity"
	"casevault/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededTx builds a transaction preloaded with one case, its person, a
// financial item, a note, and a linked alert.
func seededTx(t *testing.T) *gatedTx {
	t.Helper()
	now := time.Now()
	tx := newGatedTx()
	tx.doc.People = append(tx.doc.People, entity.Person{ID: "p1", FirstName: "Pat", LastName: "Doe", CreatedAt: now, UpdatedAt: now})
	tx.doc.Cases = append(tx.doc.Cases, entity.Case{
		ID: "c1", MCN: "MCN-1", Name: "Case One",
		Status: entity.CaseStatusActive, PersonID: "p1",
		CreatedAt: now, UpdatedAt: now,
	})
	tx.doc.Financials = append(tx.doc.Financials, entity.FinancialItem{
		ID: "f1", CaseID: "c1", Category: entity.FinancialCategoryResources,
		Description: "Checking account", Amount: 900,
		VerificationStatus: entity.VerificationNeeded,
		CreatedAt:          now, UpdatedAt: now,
	})
	tx.doc.Notes = append(tx.doc.Notes, entity.Note{ID: "n1", CaseID: "c1", Category: "General", Content: "first", CreatedAt: now, UpdatedAt: now})
	tx.doc.Alerts = append(tx.doc.Alerts, entity.Alert{ID: "a1", CaseID: "c1", MCN: "MCN-1", Status: entity.AlertStatusOpen, CreatedAt: now, UpdatedAt: now})

	return tx
}

func TestCaseRepositoryGet(t *testing.T) {
	tx := seededTx(t)
	repo := NewCaseRepository(tx)
	ctx := context.Background()

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	c, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "MCN-1", c.MCN)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCaseRepositoryGetReturnsCopies(t *testing.T) {
	tx := seededTx(t)
	repo := NewCaseRepository(tx)
	ctx := context.Background()

	c, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	c.MCN = "mutated"

	again, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "MCN-1", again.MCN)
}

func TestCaseRepositorySaveUpserts(t *testing.T) {
	tx := seededTx(t)
	repo := NewCaseRepository(tx)
	ctx := context.Background()

	updated := tx.doc.Cases[0].Clone()
	updated.Name = "Renamed"
	require.NoError(t, repo.Save(ctx, updated))
	assert.Len(t, tx.doc.Cases, 1)
	assert.Equal(t, "Renamed", tx.doc.Cases[0].Name)

	fresh := &entity.Case{ID: "c2", MCN: "MCN-2", Name: "Case Two", Status: entity.CaseStatusActive, PersonID: "p1"}
	require.NoError(t, repo.Save(ctx, fresh))
	assert.Len(t, tx.doc.Cases, 2)
}

func TestCaseRepositoryDeleteCascades(t *testing.T) {
	tx := seededTx(t)
	repo := NewCaseRepository(tx)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "c1"))

	assert.Empty(t, tx.doc.Cases)
	assert.Empty(t, tx.doc.People, "orphaned person should be removed")
	assert.Empty(t, tx.doc.Financials)
	assert.Empty(t, tx.doc.Notes)
	require.Len(t, tx.doc.Alerts, 1, "alerts outlive the case")
	assert.Empty(t, tx.doc.Alerts[0].CaseID, "alert should be unmatched, not deleted")
}

func TestCaseRepositoryDeleteKeepsSharedPerson(t *testing.T) {
	tx := seededTx(t)
	tx.doc.Cases = append(tx.doc.Cases, entity.Case{
		ID: "c2", MCN: "MCN-2", Name: "Case Two",
		Status: entity.CaseStatusActive, PersonID: "p1",
	})
	repo := NewCaseRepository(tx)

	require.NoError(t, repo.Delete(context.Background(), "c1"))

	assert.Len(t, tx.doc.Cases, 1)
	assert.Len(t, tx.doc.People, 1, "person still referenced by the surviving case")
}

func TestCaseRepositoryDeleteIsIdempotent(t *testing.T) {
	tx := seededTx(t)
	repo := NewCaseRepository(tx)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "c1"))
	require.NoError(t, repo.Delete(ctx, "c1"))
	require.NoError(t, repo.Delete(ctx, "never existed"))
}

func TestFinancialRepositoryByCase(t *testing.T) {
	tx := seededTx(t)
	tx.doc.Financials = append(tx.doc.Financials, entity.FinancialItem{
		ID: "f2", CaseID: "other", Category: entity.FinancialCategoryIncome, Amount: 100,
	})
	repo := NewFinancialRepository(tx)

	items, err := repo.GetByCase(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "f1", items[0].ID)
}

func TestFinancialRepositoryDeleteIsIdempotent(t *testing.T) {
	tx := seededTx(t)
	repo := NewFinancialRepository(tx)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "f1"))
	assert.Empty(t, tx.doc.Financials)
	require.NoError(t, repo.Delete(ctx, "f1"))
}

func TestNoteRepositorySaveAndDelete(t *testing.T) {
	tx := seededTx(t)
	repo := NewNoteRepository(tx)
	ctx := context.Background()

	note := tx.doc.Notes[0].Clone()
	note.Content = "edited"
	require.NoError(t, repo.Save(ctx, note))
	assert.Equal(t, "edited", tx.doc.Notes[0].Content)

	notes, err := repo.GetByCase(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	require.NoError(t, repo.Delete(ctx, "n1"))
	assert.Empty(t, tx.doc.Notes)
	require.NoError(t, repo.Delete(ctx, "n1"))
}

func TestAlertRepositorySaveAndDelete(t *testing.T) {
	tx := seededTx(t)
	repo := NewAlertRepository(tx)
	ctx := context.Background()

	alert, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	alert.Status = entity.AlertStatusResolved
	require.NoError(t, repo.Save(ctx, alert))
	assert.Equal(t, entity.AlertStatusResolved, tx.doc.Alerts[0].Status)

	require.NoError(t, repo.Delete(ctx, "a1"))
	assert.Empty(t, tx.doc.Alerts)
	require.NoError(t, repo.Delete(ctx, "a1"))
}

func TestPersonRepositorySave(t *testing.T) {
	tx := seededTx(t)
	repo := NewPersonRepository(tx)
	ctx := context.Background()

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	p.Phone = "555-0100"
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, "555-0100", tx.doc.People[0].Phone)
}
