package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCloneKeepsEmptyCollections(t *testing.T) {
	clone := NewDocument().Clone()

	assert.NotNil(t, clone.Cases)
	assert.NotNil(t, clone.People)
	assert.NotNil(t, clone.Financials)
	assert.NotNil(t, clone.Notes)
	assert.NotNil(t, clone.Alerts)
	assert.NotNil(t, clone.ActivityLog)

	// A fresh document's clone must marshal collections as arrays, never
	// null, or the file written from it fails validation on the next read.
	raw, err := json.Marshal(clone)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "null")
}

func TestDocumentRecordActivityTrimsToLimit(t *testing.T) {
	doc := NewDocument()
	for i := 0; i <= ActivityLogLimit; i++ {
		doc.RecordActivity(ActivityEntry{ID: "e", Action: "case.updated"})
	}

	assert.Len(t, doc.ActivityLog, ActivityLogLimit)
}
