package usecase

import (
	"context"

	"casevault/internal/domain/entity"
)

// CreateFinancialItemInput carries a new financial line for a case.
type CreateFinancialItemInput struct {
	CaseID             string                   `json:"case_id" validate:"required"`
	Category           entity.FinancialCategory `json:"category" validate:"required"`
	Description        string                   `json:"description" validate:"required"`
	Amount             float64                  `json:"amount" validate:"gte=0"`
	Frequency          string                   `json:"frequency"`
	Location           string                   `json:"location"`
	AccountNumber      string                   `json:"account_number"`
	VerificationSource string                   `json:"verification_source"`
	Notes              string                   `json:"notes"`
}

// UpdateFinancialItemInput carries a partial update; nil fields are untouched.
type UpdateFinancialItemInput struct {
	Description        *string  `json:"description" validate:"omitempty,min=1"`
	Amount             *float64 `json:"amount" validate:"omitempty,gte=0"`
	Frequency          *string  `json:"frequency"`
	Location           *string  `json:"location"`
	AccountNumber      *string  `json:"account_number"`
	VerificationSource *string  `json:"verification_source"`
	Notes              *string  `json:"notes"`
}

// FinancialUsecase defines the financial item use cases.
type FinancialUsecase interface {
	ListByCase(ctx context.Context, caseID string) ([]*entity.FinancialItem, error)
	GetItem(ctx context.Context, id string) (*entity.FinancialItem, error)
	CreateItem(ctx context.Context, input CreateFinancialItemInput) (*entity.FinancialItem, error)
	UpdateItem(ctx context.Context, id string, input UpdateFinancialItemInput) (*entity.FinancialItem, error)

	// SetVerificationStatus updates the verification state of one item.
	// Rapid successive calls for the same item coalesce into a single
	// write; only the latest state is persisted.
	SetVerificationStatus(ctx context.Context, id string, status entity.VerificationStatus) (*entity.FinancialItem, error)

	// DeleteItem removes the item. Deleting an absent id succeeds.
	DeleteItem(ctx context.Context, id string) error
}
