package vault

import (
	"context"

	"casevault/internal/domain/entity"
	"casevault/internal/domain/repository"
)

// caseRepository is the document-backed case store.
type caseRepository struct {
	tx repository.DocumentTransaction
}

// NewCaseRepository creates a case repository over the document transaction.
func NewCaseRepository(tx repository.DocumentTransaction) repository.CaseRepository {
	return &caseRepository{tx: tx}
}

func (r *caseRepository) GetAll(ctx context.Context) ([]*entity.Case, error) {
	var out []*entity.Case
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		out = make([]*entity.Case, 0, len(doc.Cases))
		for i := range doc.Cases {
			out = append(out, doc.Cases[i].Clone())
		}

		return nil
	})

	return out, err
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*entity.Case, error) {
	var out *entity.Case
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		for i := range doc.Cases {
			if doc.Cases[i].ID == id {
				out = doc.Cases[i].Clone()

				return nil
			}
		}

		return repository.ErrNotFound
	})

	return out, err
}

func (r *caseRepository) Save(ctx context.Context, c *entity.Case) error {
	saved := c.Clone()

	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		for i := range doc.Cases {
			if doc.Cases[i].ID == saved.ID {
				doc.Cases[i] = *saved

				return nil
			}
		}
		doc.Cases = append(doc.Cases, *saved)

		return nil
	})
}

// Delete removes the case and cascades to its person, financial items, and
// notes. An absent id is a no-op so repeated deletes are idempotent.
func (r *caseRepository) Delete(ctx context.Context, id string) error {
	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		var personID string
		found := false
		kept := doc.Cases[:0]
		for i := range doc.Cases {
			if doc.Cases[i].ID == id {
				found = true
				personID = doc.Cases[i].PersonID

				continue
			}
			kept = append(kept, doc.Cases[i])
		}
		if !found {
			return nil
		}
		doc.Cases = kept

		if personID != "" && !personReferenced(doc, personID) {
			people := doc.People[:0]
			for i := range doc.People {
				if doc.People[i].ID != personID {
					people = append(people, doc.People[i])
				}
			}
			doc.People = people
		}

		financials := doc.Financials[:0]
		for i := range doc.Financials {
			if doc.Financials[i].CaseID != id {
				financials = append(financials, doc.Financials[i])
			}
		}
		doc.Financials = financials

		notes := doc.Notes[:0]
		for i := range doc.Notes {
			if doc.Notes[i].CaseID != id {
				notes = append(notes, doc.Notes[i])
			}
		}
		doc.Notes = notes

		// Alerts outlive their case; they unmatch instead of vanishing.
		for i := range doc.Alerts {
			if doc.Alerts[i].CaseID == id {
				doc.Alerts[i].CaseID = ""
			}
		}

		return nil
	})
}

func personReferenced(doc *entity.Document, personID string) bool {
	for i := range doc.Cases {
		if doc.Cases[i].PersonID == personID {
			return true
		}
	}

	return false
}

// personRepository is the document-backed person store.
type personRepository struct {
	tx repository.DocumentTransaction
}

// NewPersonRepository creates a person repository over the document transaction.
func NewPersonRepository(tx repository.DocumentTransaction) repository.PersonRepository {
	return &personRepository{tx: tx}
}

func (r *personRepository) GetAll(ctx context.Context) ([]*entity.Person, error) {
	var out []*entity.Person
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		out = make([]*entity.Person, 0, len(doc.People))
		for i := range doc.People {
			out = append(out, doc.People[i].Clone())
		}

		return nil
	})

	return out, err
}

func (r *personRepository) GetByID(ctx context.Context, id string) (*entity.Person, error) {
	var out *entity.Person
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		for i := range doc.People {
			if doc.People[i].ID == id {
				out = doc.People[i].Clone()

				return nil
			}
		}

		return repository.ErrNotFound
	})

	return out, err
}

func (r *personRepository) Save(ctx context.Context, p *entity.Person) error {
	saved := p.Clone()

	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		for i := range doc.People {
			if doc.People[i].ID == saved.ID {
				doc.People[i] = *saved

				return nil
			}
		}
		doc.People = append(doc.People, *saved)

		return nil
	})
}

func (r *personRepository) Delete(ctx context.Context, id string) error {
	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		kept := doc.People[:0]
		for i := range doc.People {
			if doc.People[i].ID != id {
				kept = append(kept, doc.People[i])
			}
		}
		doc.People = kept

		return nil
	})
}

// financialRepository is the document-backed financial item store.
type financialRepository struct {
	tx repository.DocumentTransaction
}

// NewFinancialRepository creates a financial item repository over the
// document transaction.
func NewFinancialRepository(tx repository.DocumentTransaction) repository.FinancialRepository {
	return &financialRepository{tx: tx}
}

func (r *financialRepository) GetAll(ctx context.Context) ([]*entity.FinancialItem, error) {
	var out []*entity.FinancialItem
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		out = make([]*entity.FinancialItem, 0, len(doc.Financials))
		for i := range doc.Financials {
			out = append(out, doc.Financials[i].Clone())
		}

		return nil
	})

	return out, err
}

func (r *financialRepository) GetByID(ctx context.Context, id string) (*entity.FinancialItem, error) {
	var out *entity.FinancialItem
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		for i := range doc.Financials {
			if doc.Financials[i].ID == id {
				out = doc.Financials[i].Clone()

				return nil
			}
		}

		return repository.ErrNotFound
	})

	return out, err
}

func (r *financialRepository) GetByCase(ctx context.Context, caseID string) ([]*entity.FinancialItem, error) {
	var out []*entity.FinancialItem
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		for i := range doc.Financials {
			if doc.Financials[i].CaseID == caseID {
				out = append(out, doc.Financials[i].Clone())
			}
		}

		return nil
	})

	return out, err
}

func (r *financialRepository) Save(ctx context.Context, item *entity.FinancialItem) error {
	saved := item.Clone()

	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		for i := range doc.Financials {
			if doc.Financials[i].ID == saved.ID {
				doc.Financials[i] = *saved

				return nil
			}
		}
		doc.Financials = append(doc.Financials, *saved)

		return nil
	})
}

func (r *financialRepository) Delete(ctx context.Context, id string) error {
	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		kept := doc.Financials[:0]
		for i := range doc.Financials {
			if doc.Financials[i].ID != id {
				kept = append(kept, doc.Financials[i])
			}
		}
		doc.Financials = kept

		return nil
	})
}

// noteRepository is the document-backed note store.
type noteRepository struct {
	tx repository.DocumentTransaction
}

// NewNoteRepository creates a note repository over the document transaction.
func NewNoteRepository(tx repository.DocumentTransaction) repository.NoteRepository {
	return &noteRepository{tx: tx}
}

func (r *noteRepository) GetAll(ctx context.Context) ([]*entity.Note, error) {
	var out []*entity.Note
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		out = make([]*entity.Note, 0, len(doc.Notes))
		for i := range doc.Notes {
			out = append(out, doc.Notes[i].Clone())
		}

		return nil
	})

	return out, err
}

func (r *noteRepository) GetByID(ctx context.Context, id string) (*entity.Note, error) {
	var out *entity.Note
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		for i := range doc.Notes {
			if doc.Notes[i].ID == id {
				out = doc.Notes[i].Clone()

				return nil
			}
		}

		return repository.ErrNotFound
	})

	return out, err
}

func (r *noteRepository) GetByCase(ctx context.Context, caseID string) ([]*entity.Note, error) {
	var out []*entity.Note
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		for i := range doc.Notes {
			if doc.Notes[i].CaseID == caseID {
				out = append(out, doc.Notes[i].Clone())
			}
		}

		return nil
	})

	return out, err
}

func (r *noteRepository) Save(ctx context.Context, note *entity.Note) error {
	saved := note.Clone()

	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		for i := range doc.Notes {
			if doc.Notes[i].ID == saved.ID {
				doc.Notes[i] = *saved

				return nil
			}
		}
		doc.Notes = append(doc.Notes, *saved)

		return nil
	})
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		kept := doc.Notes[:0]
		for i := range doc.Notes {
			if doc.Notes[i].ID != id {
				kept = append(kept, doc.Notes[i])
			}
		}
		doc.Notes = kept

		return nil
	})
}

// alertRepository is the document-backed alert store.
type alertRepository struct {
	tx repository.DocumentTransaction
}

// NewAlertRepository creates an alert repository over the document transaction.
func NewAlertRepository(tx repository.DocumentTransaction) repository.AlertRepository {
	return &alertRepository{tx: tx}
}

func (r *alertRepository) GetAll(ctx context.Context) ([]*entity.Alert, error) {
	var out []*entity.Alert
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		out = make([]*entity.Alert, 0, len(doc.Alerts))
		for i := range doc.Alerts {
			out = append(out, doc.Alerts[i].Clone())
		}

		return nil
	})

	return out, err
}

func (r *alertRepository) GetByID(ctx context.Context, id string) (*entity.Alert, error) {
	var out *entity.Alert
	err := r.tx.View(ctx, func(doc *entity.Document) error {
		for i := range doc.Alerts {
			if doc.Alerts[i].ID == id {
				out = doc.Alerts[i].Clone()

				return nil
			}
		}

		return repository.ErrNotFound
	})

	return out, err
}

func (r *alertRepository) Save(ctx context.Context, alert *entity.Alert) error {
	saved := alert.Clone()

	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		for i := range doc.Alerts {
			if doc.Alerts[i].ID == saved.ID {
				doc.Alerts[i] = *saved

				return nil
			}
		}
		doc.Alerts = append(doc.Alerts, *saved)

		return nil
	})
}

func (r *alertRepository) Delete(ctx context.Context, id string) error {
	return r.tx.Execute(ctx, repository.WriteOptions{}, func(doc *entity.Document) error {
		kept := doc.Alerts[:0]
		for i := range doc.Alerts {
			if doc.Alerts[i].ID != id {
				kept = append(kept, doc.Alerts[i])
			}
		}
		doc.Alerts = kept

		return nil
	})
}
