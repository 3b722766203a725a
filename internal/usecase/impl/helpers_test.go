package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"casevault/internal/domain/entity"
	"casevault/internal/domain/repository"
	"casevault/internal/domain/service"
	"casevault/internal/infra/eventbus"
	"casevault/internal/infra/persistence/vault"
	"casevault/internal/state"

	"github.com/stretchr/testify/require"
)

// stubTx applies mutations to an in-memory document. Setting failErr makes
// every Execute fail, which is how the rollback paths are exercised.
type stubTx struct {
	mu      sync.Mutex
	doc     *entity.Document
	failErr error
}

func newStubTx() *stubTx {
	return &stubTx{doc: entity.NewDocument()}
}

func (t *stubTx) Execute(_ context.Context, _ repository.WriteOptions, fn func(doc *entity.Document) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failErr != nil {
		return t.failErr
	}

	work := t.doc.Clone()
	if err := fn(work); err != nil {
		return err
	}
	t.doc = work

	return nil
}

func (t *stubTx) View(_ context.Context, fn func(doc *entity.Document) error) error {
	t.mu.Lock()
	snapshot := t.doc.Clone()
	t.mu.Unlock()

	return fn(snapshot)
}

func (t *stubTx) document() *entity.Document {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.doc.Clone()
}

// fixture wires real repositories, a real store, and a real bus around the
// stub transaction so use-case behavior is observable end to end.
type fixture struct {
	tx    *stubTx
	store *state.Store
	bus   service.EventBus
	queue *vault.CoalescingQueue
	log   *slog.Logger

	events []service.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		tx:    newStubTx(),
		store: state.New(),
		bus:   eventbus.New(eventbus.Params{Logger: logger}),
		log:   logger,
	}
	f.queue = vault.NewCoalescingQueue(f.tx, logger)
	for _, eventType := range []service.EventType{
		service.EventCaseCreated, service.EventCaseUpdated, service.EventCaseStatusChanged,
		service.EventCaseDeleted, service.EventPersonUpdated,
		service.EventFinancialItemCreated, service.EventFinancialItemUpdated, service.EventFinancialItemDeleted,
		service.EventNoteCreated, service.EventNoteUpdated, service.EventNoteDeleted,
		service.EventAlertCreated, service.EventAlertUpdated, service.EventAlertResolved, service.EventAlertDeleted,
		service.EventLegacyImported,
	} {
		f.bus.Subscribe(eventType, func(_ context.Context, event service.Event) error {
			f.events = append(f.events, event)

			return nil
		})
	}

	return f
}

func (f *fixture) caseService() *caseService {
	return &caseService{
		caseRepo: vault.NewCaseRepository(f.tx),
		tx:       f.tx,
		store:    f.store,
		bus:      f.bus,
		logger:   f.log,
	}
}

func (f *fixture) personService() *personService {
	return &personService{
		personRepo: vault.NewPersonRepository(f.tx),
		tx:         f.tx,
		store:      f.store,
		bus:        f.bus,
		logger:     f.log,
	}
}

func (f *fixture) financialService() *financialService {
	return &financialService{
		financialRepo: vault.NewFinancialRepository(f.tx),
		tx:            f.tx,
		queue:         f.queue,
		store:         f.store,
		bus:           f.bus,
		logger:        f.log,
	}
}

func (f *fixture) noteService() *noteService {
	return &noteService{
		noteRepo: vault.NewNoteRepository(f.tx),
		tx:       f.tx,
		store:    f.store,
		bus:      f.bus,
		logger:   f.log,
	}
}

func (f *fixture) alertService() *alertService {
	return &alertService{
		alertRepo: vault.NewAlertRepository(f.tx),
		tx:        f.tx,
		store:     f.store,
		bus:       f.bus,
		logger:    f.log,
	}
}

// seedCase plants one case with its person in both the document and the
// state cache, the way an unlock load would.
func (f *fixture) seedCase(t *testing.T, caseID, mcn string, status entity.CaseStatus) {
	t.Helper()
	now := time.Now()
	personID := "person-" + caseID
	person := &entity.Person{ID: personID, FirstName: "Pat", LastName: "Doe", CreatedAt: now, UpdatedAt: now}
	c := &entity.Case{
		ID: caseID, MCN: mcn, Name: "Pat Doe",
		Status: status, PersonID: personID,
		CreatedAt: now, UpdatedAt: now,
	}

	err := f.tx.Execute(context.Background(), repository.WriteOptions{}, func(doc *entity.Document) error {
		doc.People = append(doc.People, *person)
		doc.Cases = append(doc.Cases, *c)

		return nil
	})
	require.NoError(t, err)
	f.store.UpsertPerson(person)
	f.store.UpsertCase(c)
}

func (f *fixture) seedFinancialItem(t *testing.T, itemID, caseID string) {
	t.Helper()
	now := time.Now()
	item := &entity.FinancialItem{
		ID: itemID, CaseID: caseID,
		Category: entity.FinancialCategoryResources, Description: "Checking account", Amount: 500,
		VerificationStatus: entity.VerificationNeeded,
		CreatedAt:          now, UpdatedAt: now,
	}

	err := f.tx.Execute(context.Background(), repository.WriteOptions{}, func(doc *entity.Document) error {
		doc.Financials = append(doc.Financials, *item)

		return nil
	})
	require.NoError(t, err)
	f.store.UpsertFinancialItem(item)
}

func (f *fixture) eventTypes() []service.EventType {
	out := make([]service.EventType, 0, len(f.events))
	for _, event := range f.events {
		out = append(out, event.Type)
	}

	return out
}
