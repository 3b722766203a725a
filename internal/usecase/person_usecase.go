package usecase

import (
	"context"

	"casevault/internal/domain/entity"
)

// UpdatePersonInput carries a partial person update; nil fields are untouched.
type UpdatePersonInput struct {
	FirstName   *string        `json:"first_name" validate:"omitempty,min=1"`
	LastName    *string        `json:"last_name" validate:"omitempty,min=1"`
	Email       *string        `json:"email" validate:"omitempty,email"`
	Phone       *string        `json:"phone"`
	DateOfBirth *string        `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	SSN         *string        `json:"ssn"`
	Addresses   []AddressInput `json:"addresses"`
}

// PersonUsecase defines the person management use cases. People are created
// and deleted with their case; only updates happen independently.
type PersonUsecase interface {
	ListPeople(ctx context.Context) ([]*entity.Person, error)
	GetPerson(ctx context.Context, id string) (*entity.Person, error)
	UpdatePerson(ctx context.Context, id string, input UpdatePersonInput) (*entity.Person, error)
}
