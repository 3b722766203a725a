package entity

import "time"

// FinancialCategory classifies a financial item on a case.
type FinancialCategory string

const (
	FinancialCategoryResources FinancialCategory = "resources"
	FinancialCategoryIncome    FinancialCategory = "income"
	FinancialCategoryExpenses  FinancialCategory = "expenses"
)

// Valid reports whether the category is one of the known kinds.
func (c FinancialCategory) Valid() bool {
	switch c {
	case FinancialCategoryResources, FinancialCategoryIncome, FinancialCategoryExpenses:
		return true
	default:
		return false
	}
}

// VerificationStatus tracks whether a financial item has been verified
// against source documentation.
type VerificationStatus string

const (
	VerificationNeeded     VerificationStatus = "Needs VR"
	VerificationRequested  VerificationStatus = "VR Pending"
	VerificationVerified   VerificationStatus = "Verified"
	VerificationAVSPending VerificationStatus = "AVS Pending"
)

// FinancialItem is a single resource, income, or expense line on a case.
type FinancialItem struct {
	ID                 string             `json:"id"`                  // Opaque unique identifier.
	CaseID             string             `json:"case_id"`             // Foreign key to the owning case.
	Category           FinancialCategory  `json:"category"`            // resources, income, or expenses.
	Description        string             `json:"description"`         // Human-readable description, e.g. "Checking account".
	Amount             float64            `json:"amount"`              // Monetary amount; never negative.
	Frequency          string             `json:"frequency,omitempty"` // Payment frequency for income/expenses, e.g. "monthly".
	Location           string             `json:"location,omitempty"`  // Institution or source, e.g. bank name.
	AccountNumber      string             `json:"account_number,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"` // Current verification state.
	VerificationSource string             `json:"verification_source,omitempty"`
	Notes              string             `json:"notes,omitempty"`     // Free-form worker notes on this item.
	CreatedAt          time.Time          `json:"created_at"`          // Timestamp of when this item was created.
	UpdatedAt          time.Time          `json:"updated_at"`          // Timestamp of the last committed mutation.
}

// Clone returns a value copy of the item.
func (f *FinancialItem) Clone() *FinancialItem {
	if f == nil {
		return nil
	}
	clone := *f

	return &clone
}
