package errors

import (
	"io/fs"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseErrorWithDetailsStillMatchesSentinel(t *testing.T) {
	err := ErrValidationFailed.WithDetails("mcn is required")

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, "mcn is required", err.Details())
	assert.Empty(t, ErrValidationFailed.Details(), "sentinel must not be mutated")
}

func TestBaseErrorWrapMessagePreservesIdentity(t *testing.T) {
	err := ErrMalformedEnvelope.WrapMessage("envelope parse failed")

	assert.ErrorIs(t, err, ErrMalformedEnvelope)
	assert.Contains(t, err.Error(), "envelope parse failed")
}

func TestWrongKeyAndMalformedEnvelopeAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrWrongKey, ErrMalformedEnvelope)
	assert.NotErrorIs(t, ErrMalformedEnvelope.WithDetails("x"), ErrWrongKey)
	assert.Equal(t, http.StatusUnauthorized, ErrWrongKey.HTTPCode())
	assert.Equal(t, http.StatusUnprocessableEntity, ErrMalformedEnvelope.HTTPCode())
}

func TestPersistenceErrorPreservesCause(t *testing.T) {
	cause := errors.Wrap(fs.ErrPermission, "open vault file")
	err := NewPersistenceError(cause, "autosave attempt 3")

	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, "PERSISTENCE_FAILED", err.ErrorCode())
	assert.Equal(t, "autosave attempt 3", err.Details())
	require.Contains(t, err.Error(), "vault persistence failed")
}

func TestAppErrorSurface(t *testing.T) {
	var appErr AppError = ErrIllegalStatusTransition.WithDetails("Archived -> Active")

	assert.Equal(t, http.StatusConflict, appErr.HTTPCode())
	assert.Equal(t, "ILLEGAL_STATUS_TRANSITION", appErr.ErrorCode())
	assert.NotEmpty(t, appErr.Message())
}
