package handler

import (
	"log/slog"
	"net/http"

	"casevault/internal/delivery/api/response"
	"casevault/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AlertHandlerParams holds dependencies for AlertHandler, injected by Fx.
type AlertHandlerParams struct {
	fx.In

	AlertUC usecase.AlertUsecase
	Logger  *slog.Logger
}

// AlertHandler holds dependencies for alert handlers
type AlertHandler struct {
	alertUC usecase.AlertUsecase
	logger  *slog.Logger
}

// NewAlertHandler is the constructor for AlertHandler
func NewAlertHandler(params AlertHandlerParams) *AlertHandler {
	return &AlertHandler{
		alertUC: params.AlertUC,
		logger:  params.Logger,
	}
}

// ImportAlertsRequest represents the request body for an alert import batch
type ImportAlertsRequest struct {
	Alerts []usecase.ImportAlertInput `json:"alerts" validate:"required,dive"`
}

// ResolveAlertRequest represents the request body for resolving an alert
type ResolveAlertRequest struct {
	Notes string `json:"notes"`
}

// LinkAlertRequest represents the request body for linking an alert to a case
type LinkAlertRequest struct {
	CaseID string `json:"case_id" validate:"required"`
}

// ListAlerts handles listing all alerts
func (h *AlertHandler) ListAlerts(c echo.Context) error {
	alerts, err := h.alertUC.ListAlerts(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, alerts)
}

// GetAlert handles retrieving one alert
func (h *AlertHandler) GetAlert(c echo.Context) error {
	alert, err := h.alertUC.GetAlert(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, alert)
}

// ImportAlerts handles importing a batch of external alerts
func (h *AlertHandler) ImportAlerts(c echo.Context) error {
	var req ImportAlertsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid alert import input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	result, err := h.alertUC.ImportAlerts(c.Request().Context(), req.Alerts)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result)
}

// LinkAlert handles attaching an unmatched alert to a case
func (h *AlertHandler) LinkAlert(c echo.Context) error {
	var req LinkAlertRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid link input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	updated, err := h.alertUC.LinkAlert(c.Request().Context(), c.Param("id"), req.CaseID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated)
}

// ResolveAlert handles resolving an open alert
func (h *AlertHandler) ResolveAlert(c echo.Context) error {
	var req ResolveAlertRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid resolve input")
	}

	updated, err := h.alertUC.ResolveAlert(c.Request().Context(), c.Param("id"), req.Notes)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated)
}

// ReopenAlert handles reopening a resolved alert
func (h *AlertHandler) ReopenAlert(c echo.Context) error {
	updated, err := h.alertUC.ReopenAlert(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated)
}

// DeleteAlert handles deleting an alert
func (h *AlertHandler) DeleteAlert(c echo.Context) error {
	if err := h.alertUC.DeleteAlert(c.Request().Context(), c.Param("id")); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil)
}
