package entity

import "time"

// AlertStatus tracks the handling state of an imported alert.
type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "Open"
	AlertStatusResolved AlertStatus = "Resolved"
)

// Alert is an externally imported work item. It may be unmatched: CaseID is
// empty until a worker links it to a case, so it is exempt from foreign-key
// validation.
type Alert struct {
	ID              string      `json:"id"`                     // Opaque unique identifier.
	CaseID          string      `json:"case_id,omitempty"`      // Optional foreign key; empty while unmatched.
	MCN             string      `json:"mcn,omitempty"`          // Business key carried by the import, used for matching.
	Type            string      `json:"type,omitempty"`         // Alert type code from the import feed.
	Description     string      `json:"description,omitempty"`  // Human-readable alert text.
	Status          AlertStatus `json:"status"`                 // Open or Resolved.
	ResolvedAt      *time.Time  `json:"resolved_at,omitempty"`  // Set when the alert is resolved.
	ResolutionNotes string      `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`             // Timestamp of when this alert was recorded.
	UpdatedAt       time.Time   `json:"updated_at"`             // Timestamp of the last committed mutation.
}

// Clone returns a value copy of the alert.
func (a *Alert) Clone() *Alert {
	if a == nil {
		return nil
	}
	clone := *a
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		clone.ResolvedAt = &t
	}

	return &clone
}
