package impl

import (
	"context"
	"testing"

	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) vaultService() *vaultService {
	return &vaultService{
		tx:     f.tx,
		store:  f.store,
		bus:    f.bus,
		logger: f.log,
	}
}

const legacyImportFixture = `{
	"people": [{"id": "lp-1", "firstName": "Rosa", "lastName": "Marquez"}],
	"caseRecords": [
		{"id": "lc-1", "personId": "lp-1", "mcn": "MCN-1", "status": "Active",
		 "financials": {"income": [{"id": "lf-1", "description": "Pension", "amount": 900}]},
		 "notes": [{"id": "ln-1", "content": "first contact"}]}
	]
}`

func TestVaultServiceImportLegacy(t *testing.T) {
	f := newFixture(t)
	svc := f.vaultService()

	result, err := svc.ImportLegacy(context.Background(), []byte(legacyImportFixture))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Cases)
	assert.Equal(t, 1, result.People)
	assert.Equal(t, 1, result.Financials)
	assert.Equal(t, 1, result.Notes)

	doc := f.tx.document()
	require.Len(t, doc.Cases, 1)
	assert.Equal(t, "MCN-1", doc.Cases[0].MCN)

	// The cache is reloaded from the merged document.
	imported := f.store.GetCaseByMCN("MCN-1")
	require.NotNil(t, imported)
	require.NotNil(t, f.store.GetPerson(imported.PersonID))
	assert.Contains(t, f.eventTypes(), service.EventLegacyImported)
}

func TestVaultServiceImportLegacySkipsDuplicateMCN(t *testing.T) {
	f := newFixture(t)
	svc := f.vaultService()
	ctx := context.Background()

	first, err := svc.ImportLegacy(ctx, []byte(legacyImportFixture))
	require.NoError(t, err)
	require.Equal(t, 1, first.Cases)

	// Re-running the same export must not duplicate anything.
	second, err := svc.ImportLegacy(ctx, []byte(legacyImportFixture))
	require.NoError(t, err)
	assert.Zero(t, second.Cases)
	assert.Zero(t, second.People)
	assert.Zero(t, second.Financials)
	assert.Zero(t, second.Notes)

	doc := f.tx.document()
	assert.Len(t, doc.Cases, 1)
	assert.Len(t, doc.People, 1)
	assert.Len(t, doc.Financials, 1)
	assert.Len(t, doc.Notes, 1)
}

func TestVaultServiceImportLegacyRejectsBadExport(t *testing.T) {
	f := newFixture(t)
	svc := f.vaultService()

	_, err := svc.ImportLegacy(context.Background(), []byte(`{"organizations": []}`))
	assert.ErrorIs(t, err, domainerrors.ErrLegacyFormat)
	assert.Empty(t, f.tx.document().Cases)
	assert.NotContains(t, f.eventTypes(), service.EventLegacyImported)
}

func TestVaultServiceCategories(t *testing.T) {
	f := newFixture(t)
	svc := f.vaultService()

	config, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, config.FinancialCategories)
	assert.NotEmpty(t, config.NoteCategories)
}

func TestVaultServiceImportLegacyLeavesDocumentOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	svc := f.vaultService()

	before := f.tx.document()
	f.tx.failErr = assert.AnError
	_, err := svc.ImportLegacy(context.Background(), []byte(legacyImportFixture))
	require.Error(t, err)
	f.tx.failErr = nil

	assert.Equal(t, before, f.tx.document())
	assert.Empty(t, f.store.AllCases())
}
