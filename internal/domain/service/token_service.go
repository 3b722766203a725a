package service

import "time"

// TokenService mints and validates session tokens. A token is issued when
// the vault is unlocked and proves to the localhost API that the caller
// performed the unlock this session; the encryption key itself never leaves
// the process.
type TokenService interface {
	GenerateSessionToken(vaultID string) (token string, expiresAt time.Time, err error)
	ValidateSessionToken(token string) (vaultID string, err error)
}
