package middleware

import (
	"strings"

	"casevault/internal/delivery/api/response"
	"casevault/internal/domain/service"

	"github.com/labstack/echo/v4"
)

const keyVaultID = "vaultID"

// AuthMiddleware validates the session token minted at unlock. Only the
// process that performed the unlock holds a valid token, so every data
// route behind this middleware implies an unlocked vault.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the Bearer session token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid token format, must be Bearer token")
		}

		vaultID, err := m.tokenSvc.ValidateSessionToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired session token")
		}

		c.Set(keyVaultID, vaultID)

		return next(c)
	}
}

// GetVaultID returns the vault id the session token was minted for.
func GetVaultID(c echo.Context) (string, bool) {
	id, ok := c.Get(keyVaultID).(string)

	return id, ok && id != ""
}
