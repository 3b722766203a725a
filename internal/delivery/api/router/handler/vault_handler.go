package handler

import (
	"io"
	"log/slog"
	"net/http"

	"casevault/internal/delivery/api/response"
	"casevault/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// VaultHandlerParams holds dependencies for VaultHandler, injected by Fx.
type VaultHandlerParams struct {
	fx.In

	VaultUC usecase.VaultUsecase
	Logger  *slog.Logger
}

// VaultHandler holds dependencies for vault lifecycle handlers
type VaultHandler struct {
	vaultUC usecase.VaultUsecase
	logger  *slog.Logger
}

// NewVaultHandler is the constructor for VaultHandler
func NewVaultHandler(params VaultHandlerParams) *VaultHandler {
	return &VaultHandler{
		vaultUC: params.VaultUC,
		logger:  params.Logger,
	}
}

// ConnectRequest represents the request body for connecting a directory
type ConnectRequest struct {
	Path string `json:"path" validate:"required"`
}

// UnlockRequest represents the request body for unlocking the vault
type UnlockRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// Connect handles directory connection
func (h *VaultHandler) Connect(c echo.Context) error {
	var req ConnectRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid connect input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	info, err := h.vaultUC.Connect(c.Request().Context(), req.Path)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, info)
}

// Reconnect handles silent reconnection from a stored handle
func (h *VaultHandler) Reconnect(c echo.Context) error {
	info, err := h.vaultUC.Reconnect(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, info)
}

// RequestAccess handles the explicit permission re-grant flow
func (h *VaultHandler) RequestAccess(c echo.Context) error {
	info, err := h.vaultUC.RequestAccess(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, info)
}

// Unlock handles vault unlock and session minting
func (h *VaultHandler) Unlock(c echo.Context) error {
	var req UnlockRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid unlock input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	result, err := h.vaultUC.Unlock(c.Request().Context(), req.Secret)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result)
}

// Lock handles locking the vault
func (h *VaultHandler) Lock(c echo.Context) error {
	if err := h.vaultUC.Lock(c.Request().Context()); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil)
}

// Disconnect handles releasing the directory
func (h *VaultHandler) Disconnect(c echo.Context) error {
	if err := h.vaultUC.Disconnect(c.Request().Context()); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil)
}

// Status reports the persistence engine status
func (h *VaultHandler) Status(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.vaultUC.Status(c.Request().Context()))
}

// Flush forces pending writes to disk
func (h *VaultHandler) Flush(c echo.Context) error {
	if err := h.vaultUC.Flush(c.Request().Context()); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil)
}

// ImportLegacy migrates a legacy export uploaded in the request body
func (h *VaultHandler) ImportLegacy(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Could not read request body")
	}

	result, err := h.vaultUC.ImportLegacy(c.Request().Context(), raw)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result)
}

// Categories returns the document's category configuration
func (h *VaultHandler) Categories(c echo.Context) error {
	config, err := h.vaultUC.Categories(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, config)
}

// ListFiles lists auxiliary files in the granted directory
func (h *VaultHandler) ListFiles(c echo.Context) error {
	files, err := h.vaultUC.ListFiles(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, files)
}
