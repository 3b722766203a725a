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

// CaseHandlerParams holds dependencies for CaseHandler, injected by Fx.
type CaseHandlerParams struct {
	fx.In

	CaseUC   usecase.CaseUsecase
	PersonUC usecase.PersonUsecase
	Logger   *slog.Logger
}

// CaseHandler holds dependencies for case-related handlers
type CaseHandler struct {
	caseUC   usecase.CaseUsecase
	personUC usecase.PersonUsecase
	logger   *slog.Logger
}

// NewCaseHandler is the constructor for CaseHandler
func NewCaseHandler(params CaseHandlerParams) *CaseHandler {
	return &CaseHandler{
		caseUC:   params.CaseUC,
		personUC: params.PersonUC,
		logger:   params.Logger,
	}
}

// ChangeStatusRequest represents the request body for a status transition
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListCases handles listing all cases
func (h *CaseHandler) ListCases(c echo.Context) error {
	cases, err := h.caseUC.ListCases(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, cases)
}

// GetCase handles retrieving a single case
func (h *CaseHandler) GetCase(c echo.Context) error {
	result, err := h.caseUC.GetCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result)
}

// CreateCase handles opening a new case with its person
func (h *CaseHandler) CreateCase(c echo.Context) error {
	var req usecase.CreateCaseInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid case input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	created, err := h.caseUC.CreateCase(c.Request().Context(), req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, created)
}

// UpdateCase handles a partial case update
func (h *CaseHandler) UpdateCase(c echo.Context) error {
	var req usecase.UpdateCaseInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid case input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	updated, err := h.caseUC.UpdateCase(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated)
}

// ChangeStatus handles a case status transition
func (h *CaseHandler) ChangeStatus(c echo.Context) error {
	var req ChangeStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	updated, err := h.caseUC.ChangeStatus(c.Request().Context(), c.Param("id"), entity.CaseStatus(req.Status))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated)
}

// DeleteCase handles deleting a case and its owned entities
func (h *CaseHandler) DeleteCase(c echo.Context) error {
	if err := h.caseUC.DeleteCase(c.Request().Context(), c.Param("id")); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil)
}

// GetPerson handles retrieving a person
func (h *CaseHandler) GetPerson(c echo.Context) error {
	person, err := h.personUC.GetPerson(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, person)
}

// UpdatePerson handles a partial person update
func (h *CaseHandler) UpdatePerson(c echo.Context) error {
	var req usecase.UpdatePersonInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid person input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	updated, err := h.personUC.UpdatePerson(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated)
}
