// Package fsdir implements the directory capability manager: it acquires a
// user-granted directory, persists the whole handle durably so later
// sessions can reconnect silently, and re-validates permission on demand.
// It never touches the vault data file itself.
package fsdir

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"casevault/config"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/service"
	"casevault/internal/errors"
	"casevault/internal/infra/handlestore"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	handleBucket = "fsdir"
	handleKey    = "directory-handle"

	// probeName is the throwaway file used to verify write access.
	probeName = ".casevault-probe"
)

// Manager is the concrete DirectoryManager backed by the handle store.
type Manager struct {
	store *handlestore.Store
	cfg   *config.Config
}

// Params holds dependencies for the manager, injected by Fx.
type Params struct {
	fx.In

	Store  *handlestore.Store
	Config *config.Config
}

// New creates the directory capability manager.
func New(params Params) service.DirectoryManager {
	return &Manager{store: params.Store, cfg: params.Config}
}

// Acquire validates the user-chosen path, probes write access, and persists
// the handle for silent reconnection by later sessions. Context
// cancellation (the user navigated away mid-pick) is ErrAborted, which is
// not an error condition the UI should alert on.
func (m *Manager) Acquire(ctx context.Context, path string) (*service.DirectoryHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted.WrapMessage("directory acquisition cancelled")
	}
	if path == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("directory path is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolve directory path")
	}
	if state := probe(abs); state != service.PermissionGranted {
		return nil, domainerrors.ErrPermissionDenied.WithDetails("directory is not writable: " + abs)
	}

	handle := &service.DirectoryHandle{
		ID:        uuid.NewString(),
		Path:      abs,
		Name:      filepath.Base(abs),
		GrantedAt: time.Now(),
	}
	if err := m.persist(ctx, handle); err != nil {
		return nil, err
	}

	return handle, nil
}

// StoredHandle returns the handle persisted by an earlier session, or nil
// when none is stored.
func (m *Manager) StoredHandle(ctx context.Context) (*service.DirectoryHandle, error) {
	payload, err := m.store.Get(ctx, handleBucket, handleKey)
	if errors.Is(err, handlestore.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load stored handle")
	}

	var handle service.DirectoryHandle
	if err := json.Unmarshal(payload, &handle); err != nil {
		// A damaged record is unrecoverable; treat it as absent.
		_ = m.store.Delete(ctx, handleBucket, handleKey)

		return nil, nil
	}

	return &handle, nil
}

// QueryPermission re-probes the handle without any user gesture. A handle
// that was granted in an earlier session can have silently degraded, so the
// result must be re-checked on every reconnection attempt.
func (m *Manager) QueryPermission(ctx context.Context, handle *service.DirectoryHandle) (service.PermissionState, error) {
	if err := ctx.Err(); err != nil {
		return service.PermissionDenied, domainerrors.ErrAborted.WrapMessage("permission query cancelled")
	}
	if handle == nil {
		return service.PermissionPrompt, nil
	}

	return probe(handle.Path), nil
}

// RequestPermission is the explicit re-grant flow, invoked after a user
// gesture. It collapses the tri-state probe to granted|denied: a handle the
// user just acted on either works now or it does not.
func (m *Manager) RequestPermission(ctx context.Context, handle *service.DirectoryHandle) (service.PermissionState, error) {
	state, err := m.QueryPermission(ctx, handle)
	if err != nil {
		return service.PermissionDenied, err
	}
	if state != service.PermissionGranted {
		return service.PermissionDenied, nil
	}
	// Refresh the stored grant timestamp on a successful re-grant.
	refreshed := *handle
	refreshed.GrantedAt = time.Now()
	if err := m.persist(ctx, &refreshed); err != nil {
		return service.PermissionDenied, err
	}

	return service.PermissionGranted, nil
}

// Forget removes the persisted handle.
func (m *Manager) Forget(ctx context.Context) error {
	return errors.Wrap(m.store.Delete(ctx, handleBucket, handleKey), "forget handle")
}

func (m *Manager) persist(ctx context.Context, handle *service.DirectoryHandle) error {
	payload, err := json.Marshal(handle)
	if err != nil {
		return errors.Wrap(err, "encode handle")
	}

	return errors.Wrap(m.store.Put(ctx, handleBucket, handleKey, payload), "persist handle")
}

// probe classifies current access to the directory:
//   - granted: the directory exists and a probe file can be created.
//   - prompt: the directory exists but writing fails with a permission
//     error, so user action can restore access.
//   - denied: the path is gone or is not a directory (the grant was
//     effectively revoked).
func probe(path string) service.PermissionState {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return service.PermissionDenied
	}

	probePath := filepath.Join(path, probeName)
	f, err := os.OpenFile(probePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return service.PermissionPrompt
		}

		return service.PermissionDenied
	}
	_ = f.Close()
	_ = os.Remove(probePath)

	return service.PermissionGranted
}
