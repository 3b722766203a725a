// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// CaseStatus represents the lifecycle state of a case.
type CaseStatus string

const (
	CaseStatusActive   CaseStatus = "Active"
	CaseStatusPending  CaseStatus = "Pending"
	CaseStatusClosed   CaseStatus = "Closed"
	CaseStatusArchived CaseStatus = "Archived"
)

// caseTransitions is the legal status transition graph. Archived is terminal.
var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusActive:   {CaseStatusPending, CaseStatusClosed},
	CaseStatusPending:  {CaseStatusActive, CaseStatusClosed},
	CaseStatusClosed:   {CaseStatusArchived},
	CaseStatusArchived: {},
}

// Valid reports whether the status is one of the known lifecycle states.
func (s CaseStatus) Valid() bool {
	_, ok := caseTransitions[s]

	return ok
}

// CanTransitionTo reports whether moving from s to next follows the graph.
// A no-op transition (same status) is never a legal transition.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	for _, allowed := range caseTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Case is the aggregate root of the domain: one tracked benefits case.
// It references its Person by foreign key rather than embedding it.
type Case struct {
	ID                string            `json:"id"`                          // Opaque unique identifier.
	MCN               string            `json:"mcn"`                         // Master Case Number, the unique business key.
	Name              string            `json:"name"`                        // Display name of the case.
	Status            CaseStatus        `json:"status"`                      // Current lifecycle state; transitions are restricted.
	PersonID          string            `json:"person_id"`                   // Foreign key to the Person this case belongs to.
	CaseType          string            `json:"case_type,omitempty"`         // Program type, e.g. "LTC", "Waiver".
	Priority          bool              `json:"priority"`                    // Flagged for priority handling.
	ApplicationDate   string            `json:"application_date,omitempty"`  // Date the application was filed (YYYY-MM-DD).
	LivingArrangement string            `json:"living_arrangement,omitempty"`// Current living arrangement of the applicant.
	OrganizationID    string            `json:"organization_id,omitempty"`   // Opaque reference to the servicing organization.
	Metadata          map[string]string `json:"metadata,omitempty"`          // Opaque key/value bag for UI-owned annotations.
	CreatedAt         time.Time         `json:"created_at"`                  // Timestamp of when this case was created.
	UpdatedAt         time.Time         `json:"updated_at"`                  // Timestamp of the last committed mutation.
}

// Clone returns a deep value copy so callers can never mutate store-owned state.
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Metadata != nil {
		clone.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}
