package usecase

import (
	"context"
	"time"

	"casevault/internal/domain/entity"
	"casevault/internal/domain/repository"
	"casevault/internal/domain/service"
	"casevault/internal/infra/persistence/vault"
)

// ConnectionInfo describes the directory connection presented to the UI.
type ConnectionInfo struct {
	Handle     *service.DirectoryHandle `json:"handle,omitempty"`
	Permission service.PermissionState  `json:"permission"`
}

// UnlockResult carries the session minted by a successful unlock.
type UnlockResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LegacyImportResult summarizes a legacy data migration.
type LegacyImportResult struct {
	Cases      int `json:"cases"`
	People     int `json:"people"`
	Financials int `json:"financials"`
	Notes      int `json:"notes"`
}

// VaultUsecase defines the vault lifecycle use cases: directory connection,
// unlock sessions, persistence status, and legacy migration.
type VaultUsecase interface {
	// Connect acquires a new directory and persists its handle.
	Connect(ctx context.Context, path string) (*ConnectionInfo, error)

	// Reconnect re-validates the handle stored by an earlier session
	// without any user gesture.
	Reconnect(ctx context.Context) (*ConnectionInfo, error)

	// RequestAccess runs the explicit re-grant flow and resumes pending
	// writes when access comes back.
	RequestAccess(ctx context.Context) (*ConnectionInfo, error)

	// Unlock opens the vault with the user secret, loads the document
	// into the state cache, and mints a session token.
	Unlock(ctx context.Context, secret string) (*UnlockResult, error)

	// Lock flushes and discards the key; the connection survives.
	Lock(ctx context.Context) error

	// Disconnect flushes, forgets the handle, and clears all state.
	Disconnect(ctx context.Context) error

	// Status reports the persistence engine state machine.
	Status(ctx context.Context) vault.Status

	// Flush forces pending mutations to disk.
	Flush(ctx context.Context) error

	// ImportLegacy migrates a legacy-format export into the vault as one
	// bulk mutation.
	ImportLegacy(ctx context.Context, raw []byte) (*LegacyImportResult, error)

	// ListFiles lists auxiliary files in the granted directory.
	ListFiles(ctx context.Context) ([]repository.FileInfo, error)

	// Categories returns the document's category configuration.
	Categories(ctx context.Context) (entity.CategoryConfig, error)
}
