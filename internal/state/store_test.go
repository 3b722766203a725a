package state

import (
	"testing"
	"time"

	"casevault/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCase(id, mcn string) *entity.Case {
	now := time.Now()

	return &entity.Case{
		ID: id, MCN: mcn, Name: "Case " + id,
		Status: entity.CaseStatusActive, PersonID: "person-" + id,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestStoreUpsertAndGetCase(t *testing.T) {
	s := New()

	committed := s.UpsertCase(newCase("c1", "MCN-1"))
	require.NotNil(t, committed)

	got := s.GetCase("c1")
	require.NotNil(t, got)
	assert.Equal(t, "MCN-1", got.MCN)
	assert.Nil(t, s.GetCase("missing"))
}

func TestStoreGetCaseByMCN(t *testing.T) {
	s := New()
	s.UpsertCase(newCase("c1", "MCN-1"))
	s.UpsertCase(newCase("c2", "MCN-2"))

	got := s.GetCaseByMCN("MCN-2")
	require.NotNil(t, got)
	assert.Equal(t, "c2", got.ID)
	assert.Nil(t, s.GetCaseByMCN("MCN-404"))
}

func TestStoreReturnsIsolatedCopies(t *testing.T) {
	s := New()
	s.UpsertCase(newCase("c1", "MCN-1"))

	got := s.GetCase("c1")
	got.MCN = "mutated"

	again := s.GetCase("c1")
	assert.Equal(t, "MCN-1", again.MCN, "caller mutation must not leak into the store")
}

func TestStoreMonotonicUpdatedAt(t *testing.T) {
	s := New()
	c := newCase("c1", "MCN-1")
	first := s.UpsertCase(c)

	// Re-upsert with the exact same timestamp: the committed value must
	// still move forward.
	second := s.UpsertCase(c)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt),
		"updatedAt must be strictly monotonic, got %v then %v", first.UpdatedAt, second.UpdatedAt)
}

func TestStoreRestoreCaseIsVerbatim(t *testing.T) {
	s := New()
	original := s.UpsertCase(newCase("c1", "MCN-1"))

	mutated := original.Clone()
	mutated.Name = "Renamed"
	s.UpsertCase(mutated)

	s.RestoreCase("c1", original)

	restored := s.GetCase("c1")
	assert.Equal(t, original, restored, "rollback must restore the snapshot exactly")
}

func TestStoreRestoreCaseNilRemoves(t *testing.T) {
	s := New()
	s.UpsertCase(newCase("c1", "MCN-1"))

	s.RestoreCase("c1", nil)
	assert.Nil(t, s.GetCase("c1"))
}

func TestStoreRemoveCaseIdempotent(t *testing.T) {
	s := New()
	s.UpsertCase(newCase("c1", "MCN-1"))

	s.RemoveCase("c1")
	s.RemoveCase("c1")
	assert.Nil(t, s.GetCase("c1"))
	assert.Empty(t, s.AllCases())
}

func TestStoreFinancialItemsByCase(t *testing.T) {
	s := New()
	s.UpsertFinancialItem(&entity.FinancialItem{ID: "f1", CaseID: "c1", Category: entity.FinancialCategoryIncome, Amount: 100})
	s.UpsertFinancialItem(&entity.FinancialItem{ID: "f2", CaseID: "c1", Category: entity.FinancialCategoryExpenses, Amount: 50})
	s.UpsertFinancialItem(&entity.FinancialItem{ID: "f3", CaseID: "c2", Category: entity.FinancialCategoryResources, Amount: 10})

	items := s.FinancialItemsByCase("c1")
	assert.Len(t, items, 2)
	assert.Empty(t, s.FinancialItemsByCase("c404"))
}

func TestStoreLoadDocument(t *testing.T) {
	s := New()
	s.UpsertCase(newCase("stale", "MCN-OLD"))

	now := time.Now()
	doc := entity.NewDocument()
	doc.People = append(doc.People, entity.Person{ID: "p1", FirstName: "Pat", CreatedAt: now, UpdatedAt: now})
	doc.Cases = append(doc.Cases, entity.Case{ID: "c1", MCN: "MCN-1", Status: entity.CaseStatusActive, PersonID: "p1", CreatedAt: now, UpdatedAt: now})
	doc.Notes = append(doc.Notes, entity.Note{ID: "n1", CaseID: "c1"})
	doc.Alerts = append(doc.Alerts, entity.Alert{ID: "a1", Status: entity.AlertStatusOpen})

	s.LoadDocument(doc)

	assert.Nil(t, s.GetCase("stale"), "load replaces the whole cache")
	assert.NotNil(t, s.GetCase("c1"))
	assert.NotNil(t, s.GetPerson("p1"))
	assert.NotNil(t, s.GetNote("n1"))
	assert.NotNil(t, s.GetAlert("a1"))
}

func TestStoreReset(t *testing.T) {
	s := New()
	s.UpsertCase(newCase("c1", "MCN-1"))
	s.SetError(DomainCases, "boom")

	s.Reset()

	assert.Empty(t, s.AllCases())
	assert.Empty(t, s.Error(DomainCases))
}

func TestStoreSubscribe(t *testing.T) {
	s := New()

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) {
		changes = append(changes, c)
	})

	s.UpsertCase(newCase("c1", "MCN-1"))
	s.RemoveCase("c1")
	require.Len(t, changes, 2)
	assert.Equal(t, Change{Domain: DomainCases, Kind: ChangeUpsert, ID: "c1"}, changes[0])
	assert.Equal(t, Change{Domain: DomainCases, Kind: ChangeRemove, ID: "c1"}, changes[1])

	unsubscribe()
	s.UpsertCase(newCase("c2", "MCN-2"))
	assert.Len(t, changes, 2, "unsubscribed handler must not fire")
}

func TestStoreLoadingFlags(t *testing.T) {
	s := New()

	assert.False(t, s.Loading(DomainAlerts))
	s.SetLoading(DomainAlerts, true)
	assert.True(t, s.Loading(DomainAlerts))
	s.SetLoading(DomainAlerts, false)
	assert.False(t, s.Loading(DomainAlerts))
}
