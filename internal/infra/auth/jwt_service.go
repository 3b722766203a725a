// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"casevault/config"
	"casevault/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret string        // Secret key for signing session tokens.
	ttl    time.Duration // Time-to-live for session tokens.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Session == "" {
		return nil, errors.New("session secret must be provided")
	}

	return &jwtService{
		secret: cfg.SecretKey.Session,
		ttl:    cfg.Session.TokenTTL,
	}, nil
}

// GenerateSessionToken creates a session token bound to the unlocked vault.
func (s *jwtService) GenerateSessionToken(vaultID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  vaultID,           // Subject (the vault the session belongs to)
		"iat":  time.Now().Unix(), // Issued At
		"exp":  expiresAt.Unix(),  // Expiration Time
		"type": "session",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ValidateSessionToken checks the token and returns the vault id it was
// minted for.
func (s *jwtService) ValidateSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	vaultID, err := claims.GetSubject()
	if err != nil || vaultID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}

	return vaultID, nil
}
