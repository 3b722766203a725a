package entity

import "time"

// DocumentVersion is the current schema version of the persisted document.
const DocumentVersion = 3

// ActivityLogLimit bounds the activity log carried inside the document.
const ActivityLogLimit = 500

// CategoryConfig carries the user-tunable category lists the UI renders
// pickers from. Defaults are installed when a document is first created.
type CategoryConfig struct {
	FinancialCategories []string `json:"financial_categories"`
	NoteCategories      []string `json:"note_categories"`
	AlertTypes          []string `json:"alert_types,omitempty"`
}

// DefaultCategoryConfig returns the category lists a fresh document starts with.
func DefaultCategoryConfig() CategoryConfig {
	return CategoryConfig{
		FinancialCategories: []string{
			string(FinancialCategoryResources),
			string(FinancialCategoryIncome),
			string(FinancialCategoryExpenses),
		},
		NoteCategories: []string{"General", "VR Tracking", "Client Contact", "Follow-up"},
	}
}

// ActivityEntry records one committed mutation in the document's activity log.
type ActivityEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`      // e.g. "case.created", "financial-item.updated".
	EntityKind string    `json:"entity_kind"` // case, person, financial-item, note, alert.
	EntityID   string    `json:"entity_id"`
	Details    string    `json:"details,omitempty"`
}

// Document is the single persisted aggregate: every entity collection lives
// in one file and is written atomically as a whole. All foreign keys must
// resolve within the same document.
type Document struct {
	Version        int             `json:"version"`
	Cases          []Case          `json:"cases"`
	People         []Person        `json:"people"`
	Financials     []FinancialItem `json:"financials"`
	Notes          []Note          `json:"notes"`
	Alerts         []Alert         `json:"alerts"`
	CategoryConfig CategoryConfig  `json:"category_config"`
	ActivityLog    []ActivityEntry `json:"activity_log"`
}

// NewDocument returns an empty document at the current schema version with
// default category configuration.
func NewDocument() *Document {
	return &Document{
		Version:        DocumentVersion,
		Cases:          []Case{},
		People:         []Person{},
		Financials:     []FinancialItem{},
		Notes:          []Note{},
		Alerts:         []Alert{},
		CategoryConfig: DefaultCategoryConfig(),
		ActivityLog:    []ActivityEntry{},
	}
}

// RecordActivity prepends an entry to the activity log, trimming to the
// configured bound. Newest entries come first.
func (d *Document) RecordActivity(entry ActivityEntry) {
	d.ActivityLog = append([]ActivityEntry{entry}, d.ActivityLog...)
	if len(d.ActivityLog) > ActivityLogLimit {
		d.ActivityLog = d.ActivityLog[:ActivityLogLimit]
	}
}

// Clone returns a deep copy of the whole document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	// Collections stay non-nil slices: a nil slice marshals as JSON null,
	// which the document schema rejects as an array on the next read.
	clone := &Document{
		Version:        d.Version,
		Cases:          make([]Case, 0, len(d.Cases)),
		People:         make([]Person, 0, len(d.People)),
		Financials:     make([]FinancialItem, 0, len(d.Financials)),
		Notes:          make([]Note, 0, len(d.Notes)),
		Alerts:         make([]Alert, 0, len(d.Alerts)),
		CategoryConfig: d.CategoryConfig,
		ActivityLog:    append(make([]ActivityEntry, 0, len(d.ActivityLog)), d.ActivityLog...),
	}
	clone.CategoryConfig.FinancialCategories = append([]string(nil), d.CategoryConfig.FinancialCategories...)
	clone.CategoryConfig.NoteCategories = append([]string(nil), d.CategoryConfig.NoteCategories...)
	clone.CategoryConfig.AlertTypes = append([]string(nil), d.CategoryConfig.AlertTypes...)
	for _, c := range d.Cases {
		clone.Cases = append(clone.Cases, *c.Clone())
	}
	for _, p := range d.People {
		clone.People = append(clone.People, *p.Clone())
	}
	for _, f := range d.Financials {
		clone.Financials = append(clone.Financials, *f.Clone())
	}
	for _, n := range d.Notes {
		clone.Notes = append(clone.Notes, *n.Clone())
	}
	for _, a := range d.Alerts {
		clone.Alerts = append(clone.Alerts, *a.Clone())
	}

	return clone
}
