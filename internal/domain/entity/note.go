package entity

import "time"

// Note is a free-form annotation on a case, grouped by category.
type Note struct {
	ID        string    `json:"id"`         // Opaque unique identifier.
	CaseID    string    `json:"case_id"`    // Foreign key to the owning case.
	Category  string    `json:"category"`   // Note category, e.g. "General", "VR Tracking".
	Content   string    `json:"content"`    // The note body.
	CreatedAt time.Time `json:"created_at"` // Timestamp of when this note was created.
	UpdatedAt time.Time `json:"updated_at"` // Timestamp of the last committed mutation.
}

// Clone returns a value copy of the note.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	clone := *n

	return &clone
}
