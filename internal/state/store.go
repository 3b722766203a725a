// Package state holds the in-memory authoritative cache of all entities.
// There is exactly one Store per process, created at the composition root
// and constructor-injected everywhere; nothing in this package is a global.
//
// The store is mutated only inside use cases. Presentation code reads it
// and subscribes to change notifications; it never writes.
package state

import (
	"sync"
	"time"

	"casevault/internal/domain/entity"
)

// Domain labels one entity collection for loading/error flags and change
// notifications.
type Domain string

const (
	DomainCases      Domain = "cases"
	DomainPeople     Domain = "people"
	DomainFinancials Domain = "financials"
	DomainNotes      Domain = "notes"
	DomainAlerts     Domain = "alerts"
)

// ChangeKind says what happened to a domain.
type ChangeKind string

const (
	ChangeUpsert ChangeKind = "upsert"
	ChangeRemove ChangeKind = "remove"
	ChangeFlags  ChangeKind = "flags"
	ChangeReset  ChangeKind = "reset"
)

// Change is delivered to subscribers after every committed store mutation.
type Change struct {
	Domain Domain
	Kind   ChangeKind
	ID     string
}

// Subscriber receives change notifications. Called synchronously, outside
// the store lock; keep handlers fast.
type Subscriber func(Change)

// UnsubscribeFunc removes a subscriber.
type UnsubscribeFunc func()

// Store is the process-wide in-memory entity cache.
type Store struct {
	mu         sync.RWMutex
	cases      map[string]*entity.Case
	people     map[string]*entity.Person
	financials map[string]*entity.FinancialItem
	notes      map[string]*entity.Note
	alerts     map[string]*entity.Alert
	loading    map[Domain]bool
	errs       map[Domain]string
	subs       map[int]Subscriber
	nextSubID  int
	now        func() time.Time
}

// New creates an empty store.
func New() *Store {
	s := &Store{now: time.Now}
	s.resetLocked()

	return s
}

func (s *Store) resetLocked() {
	s.cases = make(map[string]*entity.Case)
	s.people = make(map[string]*entity.Person)
	s.financials = make(map[string]*entity.FinancialItem)
	s.notes = make(map[string]*entity.Note)
	s.alerts = make(map[string]*entity.Alert)
	s.loading = make(map[Domain]bool)
	s.errs = make(map[Domain]string)
	if s.subs == nil {
		s.subs = make(map[int]Subscriber)
	}
}

// Reset clears every collection and flag. Test-only in spirit, also used
// when the vault is disconnected.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.notify(Change{Kind: ChangeReset})
}

// Subscribe registers a change subscriber and returns its removal func.
func (s *Store) Subscribe(fn Subscriber) UnsubscribeFunc {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(change Change) {
	s.mu.RLock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(change)
	}
}

// SetLoading flips the loading flag for a domain.
func (s *Store) SetLoading(domain Domain, loading bool) {
	s.mu.Lock()
	s.loading[domain] = loading
	s.mu.Unlock()
	s.notify(Change{Domain: domain, Kind: ChangeFlags})
}

// Loading reports the loading flag for a domain.
func (s *Store) Loading(domain Domain) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading[domain]
}

// SetError records or clears ("" clears) the error message for a domain.
func (s *Store) SetError(domain Domain, message string) {
	s.mu.Lock()
	if message == "" {
		delete(s.errs, domain)
	} else {
		s.errs[domain] = message
	}
	s.mu.Unlock()
	s.notify(Change{Domain: domain, Kind: ChangeFlags})
}

// Error returns the error message for a domain, empty when none.
func (s *Store) Error(domain Domain) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.errs[domain]
}

// stampUpdatedAt enforces the strictly-monotonic updatedAt invariant: the
// committed value must exceed the prior one even when the wall clock has
// not advanced past it.
func stampUpdatedAt(prev, proposed time.Time) time.Time {
	if proposed.After(prev) {
		return proposed
	}

	return prev.Add(time.Millisecond)
}

// --- cases ---

// GetCase returns a value copy of the case, or nil when absent.
func (s *Store) GetCase(id string) *entity.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cases[id].Clone()
}

// GetCaseByMCN returns a value copy of the case carrying the business key.
func (s *Store) GetCaseByMCN(mcn string) *entity.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cases {
		if c.MCN == mcn {
			return c.Clone()
		}
	}

	return nil
}

// AllCases returns value copies of every case.
func (s *Store) AllCases() []*entity.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Case, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, c.Clone())
	}

	return out
}

// UpsertCase stores a value copy of c, stamping UpdatedAt monotonically,
// and returns the committed copy.
func (s *Store) UpsertCase(c *entity.Case) *entity.Case {
	s.mu.Lock()
	clone := c.Clone()
	if prev, ok := s.cases[c.ID]; ok {
		clone.UpdatedAt = stampUpdatedAt(prev.UpdatedAt, clone.UpdatedAt)
	}
	s.cases[c.ID] = clone
	committed := clone.Clone()
	s.mu.Unlock()
	s.notify(Change{Domain: DomainCases, Kind: ChangeUpsert, ID: c.ID})

	return committed
}

// RestoreCase writes a snapshot back verbatim, bypassing the monotonic
// stamp. Used only by rollback paths; a nil snapshot removes the id.
func (s *Store) RestoreCase(id string, snapshot *entity.Case) {
	s.mu.Lock()
	if snapshot == nil {
		delete(s.cases, id)
	} else {
		s.cases[id] = snapshot.Clone()
	}
	s.mu.Unlock()
	s.notify(Change{Domain: DomainCases, Kind: ChangeUpsert, ID: id})
}

// RemoveCase deletes the case from the cache.
func (s *Store) RemoveCase(id string) {
	s.mu.Lock()
	delete(s.cases, id)
	s.mu.Unlock()
	s.notify(Change{Domain: DomainCases, Kind: ChangeRemove, ID: id})
}

// --- people ---

// GetPerson returns a value copy of the person, or nil when absent.
func (s *Store) GetPerson(id string) *entity.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.people[id].Clone()
}

// AllPeople returns value copies of every person.
func (s *Store) AllPeople() []*entity.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Person, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, p.Clone())
	}

	return out
}

// UpsertPerson stores a value copy of p with monotonic UpdatedAt.
func (s *Store) UpsertPerson(p *entity.Person) *entity.Person {
	s.mu.Lock()
	clone := p.Clone()
	if prev, ok := s.people[p.ID]; ok {
		clone.UpdatedAt = stampUpdatedAt(prev.UpdatedAt, clone.UpdatedAt)
	}
	s.people[p.ID] = clone
	committed := clone.Clone()
	s.mu.Unlock()
	s.notify(Change{Domain: DomainPeople, Kind: ChangeUpsert, ID: p.ID})

	return committed
}

// RestorePerson writes a snapshot back verbatim; nil removes the id.
func (s *Store) RestorePerson(id string, snapshot *entity.Person) {
	s.mu.Lock()
	if snapshot == nil {
		delete(s.people, id)
	} else {
		s.people[id] = snapshot.Clone()
	}
	s.mu.Unlock()
	s.notify(Change{Domain: DomainPeople, Kind: ChangeUpsert, ID: id})
}

// RemovePerson deletes the person from the cache.
func (s *Store) RemovePerson(id string) {
	s.mu.Lock()
	delete(s.people, id)
	s.mu.Unlock()
	s.notify(Change{Domain: DomainPeople, Kind: ChangeRemove, ID: id})
}

// --- financial items ---

// GetFinancialItem returns a value copy of the item, or nil when absent.
func (s *Store) GetFinancialItem(id string) *entity.FinancialItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.financials[id].Clone()
}

// AllFinancialItems returns value copies of every item.
func (s *Store) AllFinancialItems() []*entity.FinancialItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.FinancialItem, 0, len(s.financials))
	for _, f := range s.financials {
		out = append(out, f.Clone())
	}

	return out
}

// FinancialItemsByCase returns value copies of the items on one case.
func (s *Store) FinancialItemsByCase(caseID string) []*entity.FinancialItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.FinancialItem
	for _, f := range s.financials {
		if f.CaseID == caseID {
			out = append(out, f.Clone())
		}
	}

	return out
}

// UpsertFinancialItem stores a value copy with monotonic UpdatedAt.
func (s *Store) UpsertFinancialItem(item *entity.FinancialItem) *entity.FinancialItem {
	s.mu.Lock()
	clone := item.Clone()
	if prev, ok := s.financials[item.ID]; ok {
		clone.UpdatedAt = stampUpdatedAt(prev.UpdatedAt, clone.UpdatedAt)
	}
	s.financials[item.ID] = clone
	committed := clone.Clone()
	s.mu.Unlock()
	s.notify(Change{Domain: DomainFinancials, Kind: ChangeUpsert, ID: item.ID})

	return committed
}

// RestoreFinancialItem writes a snapshot back verbatim; nil removes the id.
func (s *Store) RestoreFinancialItem(id string, snapshot *entity.FinancialItem) {
	s.mu.Lock()
	if snapshot == nil {
		delete(s.financials, id)
	} else {
		s.financials[id] = snapshot.Clone()
	}
	s.mu.Unlock()
	s.notify(Change{Domain: DomainFinancials, Kind: ChangeUpsert, ID: id})
}

// RemoveFinancialItem deletes the item from the cache.
func (s *Store) RemoveFinancialItem(id string) {
	s.mu.Lock()
	delete(s.financials, id)
	s.mu.Unlock()
	s.notify(Change{Domain: DomainFinancials, Kind: ChangeRemove, ID: id})
}

// --- notes ---

// GetNote returns a value copy of the note, or nil when absent.
func (s *Store) GetNote(id string) *entity.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.notes[id].Clone()
}

// AllNotes returns value copies of every note.
func (s *Store) AllNotes() []*entity.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n.Clone())
	}

	return out
}

// NotesByCase returns value copies of the notes on one case.
func (s *Store) NotesByCase(caseID string) []*entity.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Note
	for _, n := range s.notes {
		if n.CaseID == caseID {
			out = append(out, n.Clone())
		}
	}

	return out
}

// UpsertNote stores a value copy with monotonic UpdatedAt.
func (s *Store) UpsertNote(note *entity.Note) *entity.Note {
	s.mu.Lock()
	clone := note.Clone()
	if prev, ok := s.notes[note.ID]; ok {
		clone.UpdatedAt = stampUpdatedAt(prev.UpdatedAt, clone.UpdatedAt)
	}
	s.notes[note.ID] = clone
	committed := clone.Clone()
	s.mu.Unlock()
	s.notify(Change{Domain: DomainNotes, Kind: ChangeUpsert, ID: note.ID})

	return committed
}

// RestoreNote writes a snapshot back verbatim; nil removes the id.
func (s *Store) RestoreNote(id string, snapshot *entity.Note) {
	s.mu.Lock()
	if snapshot == nil {
		delete(s.notes, id)
	} else {
		s.notes[id] = snapshot.Clone()
	}
	s.mu.Unlock()
	s.notify(Change{Domain: DomainNotes, Kind: ChangeUpsert, ID: id})
}

// RemoveNote deletes the note from the cache.
func (s *Store) RemoveNote(id string) {
	s.mu.Lock()
	delete(s.notes, id)
	s.mu.Unlock()
	s.notify(Change{Domain: DomainNotes, Kind: ChangeRemove, ID: id})
}

// --- alerts ---

// GetAlert returns a value copy of the alert, or nil when absent.
func (s *Store) GetAlert(id string) *entity.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.alerts[id].Clone()
}

// AllAlerts returns value copies of every alert.
func (s *Store) AllAlerts() []*entity.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a.Clone())
	}

	return out
}

// UpsertAlert stores a value copy with monotonic UpdatedAt.
func (s *Store) UpsertAlert(alert *entity.Alert) *entity.Alert {
	s.mu.Lock()
	clone := alert.Clone()
	if prev, ok := s.alerts[alert.ID]; ok {
		clone.UpdatedAt = stampUpdatedAt(prev.UpdatedAt, clone.UpdatedAt)
	}
	s.alerts[alert.ID] = clone
	committed := clone.Clone()
	s.mu.Unlock()
	s.notify(Change{Domain: DomainAlerts, Kind: ChangeUpsert, ID: alert.ID})

	return committed
}

// RestoreAlert writes a snapshot back verbatim; nil removes the id.
func (s *Store) RestoreAlert(id string, snapshot *entity.Alert) {
	s.mu.Lock()
	if snapshot == nil {
		delete(s.alerts, id)
	} else {
		s.alerts[id] = snapshot.Clone()
	}
	s.mu.Unlock()
	s.notify(Change{Domain: DomainAlerts, Kind: ChangeUpsert, ID: id})
}

// RemoveAlert deletes the alert from the cache.
func (s *Store) RemoveAlert(id string) {
	s.mu.Lock()
	delete(s.alerts, id)
	s.mu.Unlock()
	s.notify(Change{Domain: DomainAlerts, Kind: ChangeRemove, ID: id})
}

// LoadDocument replaces the whole cache with the contents of a freshly
// read document. Used at connect/unlock time.
func (s *Store) LoadDocument(doc *entity.Document) {
	s.mu.Lock()
	s.resetLocked()
	for i := range doc.Cases {
		c := doc.Cases[i]
		s.cases[c.ID] = c.Clone()
	}
	for i := range doc.People {
		p := doc.People[i]
		s.people[p.ID] = p.Clone()
	}
	for i := range doc.Financials {
		f := doc.Financials[i]
		s.financials[f.ID] = f.Clone()
	}
	for i := range doc.Notes {
		n := doc.Notes[i]
		s.notes[n.ID] = n.Clone()
	}
	for i := range doc.Alerts {
		a := doc.Alerts[i]
		s.alerts[a.ID] = a.Clone()
	}
	s.mu.Unlock()
	s.notify(Change{Kind: ChangeReset})
}
