package entity

import "time"

// Address is a mailing or residence address attached to a Person.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Person is the applicant a case is opened for. A person is owned by exactly
// one case at creation time and is referenced by foreign key, never embedded.
type Person struct {
	ID          string    `json:"id"`                      // Opaque unique identifier.
	FirstName   string    `json:"first_name"`              // Given name.
	LastName    string    `json:"last_name"`               // Family name.
	Email       string    `json:"email,omitempty"`         // Contact email.
	Phone       string    `json:"phone,omitempty"`         // Contact phone number.
	DateOfBirth string    `json:"date_of_birth,omitempty"` // Date of birth (YYYY-MM-DD).
	SSN         string    `json:"ssn,omitempty"`           // Social security number; stored encrypted with the document, never logged.
	Addresses   []Address `json:"addresses,omitempty"`     // Known addresses, primary first.
	CreatedAt   time.Time `json:"created_at"`              // Timestamp of when this person was recorded.
	UpdatedAt   time.Time `json:"updated_at"`              // Timestamp of the last committed mutation.
}

// FullName renders the display name the UI sorts and searches on.
func (p *Person) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// Clone returns a deep value copy of the person.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Addresses != nil {
		clone.Addresses = append([]Address(nil), p.Addresses...)
	}

	return &clone
}
