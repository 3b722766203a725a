package handler

import (
	"log/slog"
	"net/http"

	"casevault/internal/delivery/api/response"
	"casevault/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// NoteHandlerParams holds dependencies for NoteHandler, injected by Fx.
type NoteHandlerParams struct {
	fx.In

	NoteUC usecase.NoteUsecase
	Logger *slog.Logger
}

// NoteHandler holds dependencies for note handlers
type NoteHandler struct {
	noteUC usecase.NoteUsecase
	logger *slog.Logger
}

// NewNoteHandler is the constructor for NoteHandler
func NewNoteHandler(params NoteHandlerParams) *NoteHandler {
	return &NoteHandler{
		noteUC: params.NoteUC,
		logger: params.Logger,
	}
}

// ListByCase handles listing notes of a case
func (h *NoteHandler) ListByCase(c echo.Context) error {
	notes, err := h.noteUC.ListByCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, notes)
}

// CreateNote handles adding a note to a case
func (h *NoteHandler) CreateNote(c echo.Context) error {
	var req usecase.CreateNoteInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid note input")
	}
	req.CaseID = c.Param("id")
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	created, err := h.noteUC.CreateNote(c.Request().Context(), req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, created)
}

// UpdateNote handles a partial note update
func (h *NoteHandler) UpdateNote(c echo.Context) error {
	var req usecase.UpdateNoteInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid note input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	updated, err := h.noteUC.UpdateNote(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, updated)
}

// DeleteNote handles deleting a note
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	if err := h.noteUC.DeleteNote(c.Request().Context(), c.Param("id")); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil)
}
