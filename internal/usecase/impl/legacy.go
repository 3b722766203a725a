package impl

import (
	"encoding/json"
	"strings"
	"time"

	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"

	"github.com/google/uuid"
)

// Legacy export layout: people and case records live in separate arrays
// joined by personId, financial items are grouped by category under each
// case record, and notes are embedded in the record.
type legacyExport struct {
	People        []legacyPerson `json:"people"`
	CaseRecords   []legacyCase   `json:"caseRecords"`
	Cases         []legacyCase   `json:"cases"` // older exports used this name
	Organizations []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"organizations"`
}

type legacyAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	ZipCode string `json:"zipCode"` // pre-rename field
}

type legacyPerson struct {
	ID                string        `json:"id"`
	FirstName         string        `json:"firstName"`
	LastName          string        `json:"lastName"`
	Email             string        `json:"email"`
	Phone             string        `json:"phone"`
	DateOfBirth       string        `json:"dateOfBirth"`
	SSN               string        `json:"ssn"`
	Address           legacyAddress `json:"address"`
	LivingArrangement string        `json:"livingArrangement"`
	OrganizationID    string        `json:"organizationId"`
}

type legacyFinancialItem struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Amount             float64 `json:"amount"`
	Frequency          string  `json:"frequency"`
	Location           string  `json:"location"`
	AccountNumber      string  `json:"accountNumber"`
	VerificationStatus string  `json:"verificationStatus"`
	VerificationSource string  `json:"verificationSource"`
	Notes              string  `json:"notes"`
}

type legacyNote struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Content  string `json:"content"`
	Text     string `json:"text"` // pre-rename field
}

type legacyCase struct {
	ID                string `json:"id"`
	PersonID          string `json:"personId"`
	MCN               string `json:"mcn"`
	Status            string `json:"status"`
	Priority          any    `json:"priority"` // bool in new exports, string in old
	CaseType          string `json:"caseType"`
	ApplicationDate   string `json:"applicationDate"`
	DateOpened        string `json:"dateOpened"` // pre-rename field
	LivingArrangement string `json:"livingArrangement"`
	OrganizationID    string `json:"organizationId"`
	Financials        struct {
		Resources []legacyFinancialItem `json:"resources"`
		Income    []legacyFinancialItem `json:"income"`
		Expenses  []legacyFinancialItem `json:"expenses"`
	} `json:"financials"`
	Notes []legacyNote `json:"notes"`
}

// legacyConversion is the translated entity set ready to merge into the
// document.
type legacyConversion struct {
	People     []*entity.Person
	Cases      []*entity.Case
	Financials []*entity.FinancialItem
	Notes      []*entity.Note
}

// convertLegacy translates a legacy export into current entities. Records
// without a resolvable person are skipped rather than failing the import.
func convertLegacy(raw []byte) (*legacyConversion, error) {
	var export legacyExport
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, domainerrors.ErrLegacyFormat.WithDetails(err.Error())
	}

	records := export.CaseRecords
	if len(records) == 0 {
		records = export.Cases
	}
	if len(records) == 0 && len(export.People) == 0 {
		return nil, domainerrors.ErrLegacyFormat.WithDetails("no people or case records found")
	}

	people := make(map[string]legacyPerson, len(export.People))
	for _, p := range export.People {
		people[p.ID] = p
	}

	now := time.Now()
	out := &legacyConversion{}

	for _, record := range records {
		legacy, ok := people[record.PersonID]
		if !ok {
			continue
		}

		person := convertLegacyPerson(legacy, now)
		out.People = append(out.People, person)

		priority, status := convertLegacyStatus(record)
		c := &entity.Case{
			ID:                uuid.NewString(),
			MCN:               record.MCN,
			Name:              person.FullName(),
			Status:            status,
			PersonID:          person.ID,
			CaseType:          record.CaseType,
			Priority:          priority,
			ApplicationDate:   legacyDate(firstNonEmpty(record.ApplicationDate, record.DateOpened)),
			LivingArrangement: firstNonEmpty(record.LivingArrangement, legacy.LivingArrangement),
			OrganizationID:    record.OrganizationID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		out.Cases = append(out.Cases, c)

		for category, items := range map[entity.FinancialCategory][]legacyFinancialItem{
			entity.FinancialCategoryResources: record.Financials.Resources,
			entity.FinancialCategoryIncome:    record.Financials.Income,
			entity.FinancialCategoryExpenses:  record.Financials.Expenses,
		} {
			for _, item := range items {
				out.Financials = append(out.Financials, convertLegacyFinancial(item, c.ID, category, now))
			}
		}

		for _, note := range record.Notes {
			out.Notes = append(out.Notes, &entity.Note{
				ID:        uuid.NewString(),
				CaseID:    c.ID,
				Category:  firstNonEmpty(note.Category, "General"),
				Content:   firstNonEmpty(note.Content, note.Text),
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}

	return out, nil
}

func convertLegacyPerson(legacy legacyPerson, now time.Time) *entity.Person {
	person := &entity.Person{
		ID:          uuid.NewString(),
		FirstName:   legacy.FirstName,
		LastName:    legacy.LastName,
		Email:       legacy.Email,
		Phone:       legacy.Phone,
		DateOfBirth: legacyDate(legacy.DateOfBirth),
		SSN:         legacy.SSN,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if legacy.Address != (legacyAddress{}) {
		person.Addresses = []entity.Address{{
			Street: legacy.Address.Street,
			City:   legacy.Address.City,
			State:  legacy.Address.State,
			Zip:    firstNonEmpty(legacy.Address.Zip, legacy.Address.ZipCode),
		}}
	}

	return person
}

func convertLegacyFinancial(item legacyFinancialItem, caseID string, category entity.FinancialCategory, now time.Time) *entity.FinancialItem {
	status := entity.VerificationStatus(item.VerificationStatus)
	switch status {
	case entity.VerificationNeeded, entity.VerificationRequested, entity.VerificationVerified, entity.VerificationAVSPending:
	default:
		status = entity.VerificationNeeded
	}

	return &entity.FinancialItem{
		ID:                 uuid.NewString(),
		CaseID:             caseID,
		Category:           category,
		Description:        firstNonEmpty(item.Description, item.Name),
		Amount:             item.Amount,
		Frequency:          item.Frequency,
		Location:           item.Location,
		AccountNumber:      item.AccountNumber,
		VerificationStatus: status,
		VerificationSource: item.VerificationSource,
		Notes:              item.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// convertLegacyStatus maps free-form legacy status strings onto the status
// graph. "Priority" was a status in old exports; it becomes an Active case
// with the priority flag set.
func convertLegacyStatus(record legacyCase) (bool, entity.CaseStatus) {
	priority := false
	switch v := record.Priority.(type) {
	case bool:
		priority = v
	case string:
		priority = strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}

	lower := strings.ToLower(record.Status)
	switch {
	case strings.Contains(lower, "priority") || strings.Contains(lower, "urgent"):
		return true, entity.CaseStatusActive
	case strings.Contains(lower, "review") || strings.Contains(lower, "pending"):
		return priority, entity.CaseStatusPending
	case strings.Contains(lower, "complete") || strings.Contains(lower, "closed") ||
		strings.Contains(lower, "done") || strings.Contains(lower, "denied"):
		return priority, entity.CaseStatusClosed
	default:
		return priority, entity.CaseStatusActive
	}
}

// legacyDate reduces an ISO datetime to its date part; anything else passes
// through untouched.
func legacyDate(value string) string {
	if len(value) >= 10 {
		if _, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return value[:10]
		}
	}

	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
