// Package usecase defines the application-layer contracts: one interface
// per aggregate, with input structs validated before any state changes.
package usecase

import (
	"context"

	"casevault/internal/domain/entity"
)

// AddressInput carries one address of a person.
type AddressInput struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// PersonInput carries the applicant data supplied when a case is created.
type PersonInput struct {
	FirstName   string         `json:"first_name" validate:"required"`
	LastName    string         `json:"last_name" validate:"required"`
	Email       string         `json:"email" validate:"omitempty,email"`
	Phone       string         `json:"phone"`
	DateOfBirth string         `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	SSN         string         `json:"ssn"`
	Addresses   []AddressInput `json:"addresses"`
}

// CreateCaseInput carries everything needed to open a new case. The person
// is created with the case in a single atomic mutation.
type CreateCaseInput struct {
	Name              string      `json:"name" validate:"required"`
	MCN               string      `json:"mcn" validate:"required"`
	Person            PersonInput `json:"person" validate:"required"`
	CaseType          string      `json:"case_type"`
	Priority          bool        `json:"priority"`
	ApplicationDate   string      `json:"application_date" validate:"omitempty,datetime=2006-01-02"`
	LivingArrangement string      `json:"living_arrangement"`
	OrganizationID    string      `json:"organization_id"`
}

// UpdateCaseInput carries a partial case update; nil fields are untouched.
// Status is deliberately absent, status moves only through ChangeStatus.
type UpdateCaseInput struct {
	Name              *string           `json:"name" validate:"omitempty,min=1"`
	CaseType          *string           `json:"case_type"`
	Priority          *bool             `json:"priority"`
	ApplicationDate   *string           `json:"application_date" validate:"omitempty,datetime=2006-01-02"`
	LivingArrangement *string           `json:"living_arrangement"`
	OrganizationID    *string           `json:"organization_id"`
	Metadata          map[string]string `json:"metadata"`
}

// CaseUsecase defines the case management use cases.
type CaseUsecase interface {
	// ListCases returns all cases in the vault.
	ListCases(ctx context.Context) ([]*entity.Case, error)

	// GetCase returns one case by id.
	GetCase(ctx context.Context, id string) (*entity.Case, error)

	// GetCaseByMCN returns one case by its Master Case Number.
	GetCaseByMCN(ctx context.Context, mcn string) (*entity.Case, error)

	// CreateCase opens a new case with its person. The MCN must be unique
	// across the vault.
	CreateCase(ctx context.Context, input CreateCaseInput) (*entity.Case, error)

	// UpdateCase applies a partial update to an existing case.
	UpdateCase(ctx context.Context, id string, input UpdateCaseInput) (*entity.Case, error)

	// ChangeStatus moves the case along the status graph. An illegal
	// transition fails before any state is touched.
	ChangeStatus(ctx context.Context, id string, next entity.CaseStatus) (*entity.Case, error)

	// DeleteCase removes the case and everything it owns. Deleting an
	// absent id succeeds without effect.
	DeleteCase(ctx context.Context, id string) error
}
