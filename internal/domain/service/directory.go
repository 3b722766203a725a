package service

import (
	"context"
	"time"
)

// PermissionState reports the current access level for a directory handle.
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
)

// DirectoryHandle is an opaque, revocable reference to a host-granted
// folder. The whole handle (not just its name) is persisted in the durable
// key-value store so a later session can attempt silent reconnection.
type DirectoryHandle struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	GrantedAt time.Time `json:"granted_at"`
}

// DirectoryManager acquires, persists, and re-validates the directory
// handle. It never touches the vault data file.
//
// A previously granted handle can silently degrade to prompt or denied
// between sessions; callers must treat that as a recoverable state, not a
// fatal error.
type DirectoryManager interface {
	// Acquire validates the user-chosen path, probes write access, and
	// persists the handle. A context cancellation is surfaced as
	// domainerrors.ErrAborted, not as a failure.
	Acquire(ctx context.Context, path string) (*DirectoryHandle, error)

	// StoredHandle returns the handle persisted by an earlier session, or
	// nil when none is stored.
	StoredHandle(ctx context.Context) (*DirectoryHandle, error)

	// QueryPermission re-probes the handle without any user gesture.
	QueryPermission(ctx context.Context, handle *DirectoryHandle) (PermissionState, error)

	// RequestPermission is the explicit re-grant flow; it may upgrade
	// prompt to granted but never silently retries a denied handle.
	RequestPermission(ctx context.Context, handle *DirectoryHandle) (PermissionState, error)

	// Forget removes the persisted handle.
	Forget(ctx context.Context) error
}
