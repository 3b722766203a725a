// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer. Every repository below is a view over the
// same single persisted document; saves funnel into one whole-document
// read-modify-write so cross-entity consistency is structural.
package repository

import (
	"context"
	"errors"

	"casevault/internal/domain/entity"
)

// ErrNotFound is returned when the requested entity does not exist in the
// backing document.
var ErrNotFound = errors.New("entity not found")

// CaseRepository defines the persistence operations for cases.
type CaseRepository interface {
	GetAll(ctx context.Context) ([]*entity.Case, error)
	GetByID(ctx context.Context, id string) (*entity.Case, error)

	// Save upserts the case into the document and schedules a vault write.
	Save(ctx context.Context, c *entity.Case) error

	// Delete removes the case and everything owned by it (person,
	// financial items, notes). Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error
}

// PersonRepository defines the persistence operations for people.
type PersonRepository interface {
	GetAll(ctx context.Context) ([]*entity.Person, error)
	GetByID(ctx context.Context, id string) (*entity.Person, error)
	Save(ctx context.Context, p *entity.Person) error
	Delete(ctx context.Context, id string) error
}

// FinancialRepository defines the persistence operations for financial items.
type FinancialRepository interface {
	GetAll(ctx context.Context) ([]*entity.FinancialItem, error)
	GetByID(ctx context.Context, id string) (*entity.FinancialItem, error)
	GetByCase(ctx context.Context, caseID string) ([]*entity.FinancialItem, error)
	Save(ctx context.Context, item *entity.FinancialItem) error
	Delete(ctx context.Context, id string) error
}

// NoteRepository defines the persistence operations for notes.
type NoteRepository interface {
	GetAll(ctx context.Context) ([]*entity.Note, error)
	GetByID(ctx context.Context, id string) (*entity.Note, error)
	GetByCase(ctx context.Context, caseID string) ([]*entity.Note, error)
	Save(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id string) error
}

// AlertRepository defines the persistence operations for alerts.
type AlertRepository interface {
	GetAll(ctx context.Context) ([]*entity.Alert, error)
	GetByID(ctx context.Context, id string) (*entity.Alert, error)
	Save(ctx context.Context, alert *entity.Alert) error
	Delete(ctx context.Context, id string) error
}
