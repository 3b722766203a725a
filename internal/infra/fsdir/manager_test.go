package fsdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"casevault/config"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/service"
	"casevault/internal/infra/handlestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) service.DirectoryManager {
	t.Helper()
	store, err := handlestore.Open(filepath.Join(t.TempDir(), "handles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return New(Params{Store: store, Config: &config.Config{}})
}

func TestManagerAcquirePersistsHandle(t *testing.T) {
	manager := newTestManager(t)
	dir := t.TempDir()
	ctx := context.Background()

	handle, err := manager.Acquire(ctx, dir)
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.NotEmpty(t, handle.ID)
	assert.Equal(t, dir, handle.Path)
	assert.Equal(t, filepath.Base(dir), handle.Name)
	assert.False(t, handle.GrantedAt.IsZero())

	stored, err := manager.StoredHandle(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, handle.ID, stored.ID)
	assert.Equal(t, handle.Path, stored.Path)
}

func TestManagerAcquireRejectsEmptyPath(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.Acquire(context.Background(), "")
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestManagerAcquireRejectsMissingDirectory(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.Acquire(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.ErrorIs(t, err, domainerrors.ErrPermissionDenied)
}

func TestManagerAcquireCancelledContext(t *testing.T) {
	manager := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := manager.Acquire(ctx, t.TempDir())
	assert.ErrorIs(t, err, domainerrors.ErrAborted)
}

func TestManagerStoredHandleAbsent(t *testing.T) {
	manager := newTestManager(t)

	handle, err := manager.StoredHandle(context.Background())
	require.NoError(t, err)
	assert.Nil(t, handle)
}

func TestManagerQueryPermission(t *testing.T) {
	manager := newTestManager(t)
	dir := t.TempDir()
	ctx := context.Background()

	handle, err := manager.Acquire(ctx, dir)
	require.NoError(t, err)

	state, err := manager.QueryPermission(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, service.PermissionGranted, state)

	// A removed directory is a revoked grant.
	require.NoError(t, os.RemoveAll(dir))
	state, err = manager.QueryPermission(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, service.PermissionDenied, state)

	state, err = manager.QueryPermission(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, service.PermissionPrompt, state)
}

func TestManagerQueryPermissionReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	manager := newTestManager(t)
	dir := t.TempDir()
	ctx := context.Background()

	handle, err := manager.Acquire(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0o550))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o750) })

	state, err := manager.QueryPermission(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, service.PermissionPrompt, state, "write loss with the directory intact is recoverable")
}

func TestManagerRequestPermission(t *testing.T) {
	manager := newTestManager(t)
	dir := t.TempDir()
	ctx := context.Background()

	handle, err := manager.Acquire(ctx, dir)
	require.NoError(t, err)

	state, err := manager.RequestPermission(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, service.PermissionGranted, state)

	require.NoError(t, os.RemoveAll(dir))
	state, err = manager.RequestPermission(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, service.PermissionDenied, state, "request collapses to granted or denied")
}

func TestManagerForget(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	_, err := manager.Acquire(ctx, t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.Forget(ctx))
	handle, err := manager.StoredHandle(ctx)
	require.NoError(t, err)
	assert.Nil(t, handle)

	// Forgetting twice is harmless.
	assert.NoError(t, manager.Forget(ctx))
}
