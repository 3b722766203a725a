package handler

import (
	"log/slog"
	"net/http"

	"casevault/internal/delivery/api/response"
	"casevault/internal/domain/entity"
	"casevault/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// FinancialHandlerParams holds dependencies for FinancialHandler, injected by Fx.
type FinancialHandlerParams struct {
	fx.In

	FinancialUC usecase.FinancialUsecase
	Logger      *slog.Logger
}

// FinancialHandler holds dependencies for financial item handlers
type FinancialHandler struct {
	financialUC usecase.FinancialUsecase
	logger      *slog.Logger
}

// NewFinancialHandler is the constructor for FinancialHandler
func NewFinancialHandler(params FinancialHandlerParams) *FinancialHandler {
	return &FinancialHandler{
		financialUC: params.FinancialUC,
		logger:      params.Logger,
	}
}

// SetVerificationRequest represents the request body for a verification change
type SetVerificationRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListByCase handles listing financial items of a case
func (h *FinancialHandler) ListByCase(c echo.Context) error {
	items, err := h.financialUC.ListByCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, items)
}

// GetItem handles retrieving one financial item
func (h *FinancialHandler) GetItem(c echo.Context) error {
	item, err := h.financialUC.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, item)
}

// CreateItem handles adding a financial item to a case
func (h *FinancialHandler) CreateItem(c echo.Context) error {
	var req usecase.CreateFinancialItemInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid financial item input")
	}
	req.CaseID = c.Param("id")
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	created, err := h.financialUC.CreateItem(c.Request().Context(), req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, created)
}

// UpdateItem handles a partial financial item update
func (h *FinancialHandler) UpdateItem(c echo.Context) error {
	var req usecase.UpdateFinancialItemInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid financial item input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	updated, err := h.financialUC.UpdateItem(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated)
}

// SetVerification handles a verification status change
func (h *FinancialHandler) SetVerification(c echo.Context) error {
	var req SetVerificationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	updated, err := h.financialUC.SetVerificationStatus(c.Request().Context(), c.Param("id"), entity.VerificationStatus(req.Status))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated)
}

// DeleteItem handles deleting a financial item
func (h *FinancialHandler) DeleteItem(c echo.Context) error {
	if err := h.financialUC.DeleteItem(c.Request().Context(), c.Param("id")); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil)
}
