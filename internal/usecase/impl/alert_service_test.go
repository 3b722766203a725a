package impl

import (
	"context"
	"testing"

	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/service"
	"casevault/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertServiceImportAlerts(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.alertService()

	result, err := svc.ImportAlerts(context.Background(), []usecase.ImportAlertInput{
		{MCN: "MCN-100", Type: "renewal", Description: "Annual renewal due"},
		{MCN: "MCN-404", Type: "interview", Description: "No case carries this MCN"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Unmatched)

	doc := f.tx.document()
	require.Len(t, doc.Alerts, 2)

	alerts := f.store.AllAlerts()
	require.Len(t, alerts, 2)
	var matched, unmatched int
	for _, alert := range alerts {
		assert.Equal(t, entity.AlertStatusOpen, alert.Status)
		if alert.CaseID == "" {
			unmatched++
		} else {
			assert.Equal(t, "c1", alert.CaseID)
			matched++
		}
	}
	assert.Equal(t, 1, matched)
	assert.Equal(t, 1, unmatched)
}

func TestAlertServiceImportAlertsValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.alertService()

	_, err := svc.ImportAlerts(context.Background(), []usecase.ImportAlertInput{
		{MCN: "MCN-100", Description: "type is missing"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Empty(t, f.store.AllAlerts())
}

func TestAlertServiceLinkAlert(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.alertService()
	ctx := context.Background()

	result, err := svc.ImportAlerts(ctx, []usecase.ImportAlertInput{
		{MCN: "MCN-404", Type: "renewal"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Unmatched)

	unlinked := f.store.AllAlerts()[0]
	linked, err := svc.LinkAlert(ctx, unlinked.ID, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", linked.CaseID)
	assert.Equal(t, "c1", f.store.GetAlert(unlinked.ID).CaseID)
}

func TestAlertServiceResolveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.alertService()
	ctx := context.Background()

	_, err := svc.ImportAlerts(ctx, []usecase.ImportAlertInput{{MCN: "MCN-100", Type: "renewal"}})
	require.NoError(t, err)
	alertID := f.store.AllAlerts()[0].ID

	resolved, err := svc.ResolveAlert(ctx, alertID, "handled by phone")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "handled by phone", resolved.ResolutionNotes)
	assert.Contains(t, f.eventTypes(), service.EventAlertResolved)

	// Resolving again succeeds without effect.
	again, err := svc.ResolveAlert(ctx, alertID, "different notes")
	require.NoError(t, err)
	assert.Equal(t, resolved.ResolvedAt, again.ResolvedAt)
	assert.Equal(t, "handled by phone", again.ResolutionNotes)
}

func TestAlertServiceReopenAlert(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.alertService()
	ctx := context.Background()

	_, err := svc.ImportAlerts(ctx, []usecase.ImportAlertInput{{MCN: "MCN-100", Type: "renewal"}})
	require.NoError(t, err)
	alertID := f.store.AllAlerts()[0].ID

	_, err = svc.ResolveAlert(ctx, alertID, "")
	require.NoError(t, err)

	reopened, err := svc.ReopenAlert(ctx, alertID)
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusOpen, reopened.Status)
	assert.Nil(t, reopened.ResolvedAt)
}

func TestAlertServiceDeleteAlertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.alertService()
	ctx := context.Background()

	_, err := svc.ImportAlerts(ctx, []usecase.ImportAlertInput{{MCN: "MCN-100", Type: "renewal"}})
	require.NoError(t, err)
	alertID := f.store.AllAlerts()[0].ID

	require.NoError(t, svc.DeleteAlert(ctx, alertID))
	assert.Nil(t, f.store.GetAlert(alertID))
	require.NoError(t, svc.DeleteAlert(ctx, alertID))
}

func TestAlertServiceGetAlertNotFound(t *testing.T) {
	f := newFixture(t)
	svc := f.alertService()

	_, err := svc.GetAlert(context.Background(), "missing")
	assert.ErrorIs(t, err, domainerrors.ErrAlertNotFound)
}
