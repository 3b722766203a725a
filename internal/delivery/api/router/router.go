// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"casevault/config"
	"casevault/internal/delivery/api/middleware"
	"casevault/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	VaultHandler     *handler.VaultHandler
	CaseHandler      *handler.CaseHandler
	FinancialHandler *handler.FinancialHandler
	NoteHandler      *handler.NoteHandler
	AlertHandler     *handler.AlertHandler
	AuthMiddleware   *middleware.AuthMiddleware
	Config           *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	vaultHandler     *handler.VaultHandler
	caseHandler      *handler.CaseHandler
	financialHandler *handler.FinancialHandler
	noteHandler      *handler.NoteHandler
	alertHandler     *handler.AlertHandler
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		vaultHandler:     params.VaultHandler,
		caseHandler:      params.CaseHandler,
		financialHandler: params.FinancialHandler,
		noteHandler:      params.NoteHandler,
		alertHandler:     params.AlertHandler,
		authMiddleware:   params.AuthMiddleware,
		config:           params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Vault lifecycle routes; these establish the session, so they run
	// without one. Status stays open so the UI can render before unlock.
	vaultGroup := e.Group("/vault")
	{
		vaultGroup.POST("/connect", r.vaultHandler.Connect)
		vaultGroup.POST("/reconnect", r.vaultHandler.Reconnect)
		vaultGroup.POST("/request-access", r.vaultHandler.RequestAccess)
		vaultGroup.POST("/unlock", r.vaultHandler.Unlock)
		vaultGroup.GET("/status", r.vaultHandler.Status)
	}

	// Vault routes that require an unlocked session
	vaultAuthGroup := e.Group("/vault")
	vaultAuthGroup.Use(r.authMiddleware.Authenticate)
	{
		vaultAuthGroup.POST("/lock", r.vaultHandler.Lock)
		vaultAuthGroup.POST("/disconnect", r.vaultHandler.Disconnect)
		vaultAuthGroup.POST("/flush", r.vaultHandler.Flush)
		vaultAuthGroup.POST("/import-legacy", r.vaultHandler.ImportLegacy)
		vaultAuthGroup.GET("/files", r.vaultHandler.ListFiles)
		vaultAuthGroup.GET("/categories", r.vaultHandler.Categories)
	}

	// Case routes that require an unlocked session
	caseGroup := e.Group("/cases")
	caseGroup.Use(r.authMiddleware.Authenticate)
	{
		caseGroup.GET("", r.caseHandler.ListCases)
		caseGroup.POST("", r.caseHandler.CreateCase)
		caseGroup.GET("/:id", r.caseHandler.GetCase)
		caseGroup.PATCH("/:id", r.caseHandler.UpdateCase)
		caseGroup.POST("/:id/status", r.caseHandler.ChangeStatus)
		caseGroup.DELETE("/:id", r.caseHandler.DeleteCase)

		caseGroup.GET("/:id/financials", r.financialHandler.ListByCase)
		caseGroup.POST("/:id/financials", r.financialHandler.CreateItem)
		caseGroup.GET("/:id/notes", r.noteHandler.ListByCase)
		caseGroup.POST("/:id/notes", r.noteHandler.CreateNote)
	}

	// People routes that require an unlocked session
	personGroup := e.Group("/people")
	personGroup.Use(r.authMiddleware.Authenticate)
	{
		personGroup.GET("/:id", r.caseHandler.GetPerson)
		personGroup.PATCH("/:id", r.caseHandler.UpdatePerson)
	}

	// Financial item routes that require an unlocked session
	financialGroup := e.Group("/financial-items")
	financialGroup.Use(r.authMiddleware.Authenticate)
	{
		financialGroup.GET("/:id", r.financialHandler.GetItem)
		financialGroup.PATCH("/:id", r.financialHandler.UpdateItem)
		financialGroup.POST("/:id/verification", r.financialHandler.SetVerification)
		financialGroup.DELETE("/:id", r.financialHandler.DeleteItem)
	}

	// Note routes that require an unlocked session
	noteGroup := e.Group("/notes")
	noteGroup.Use(r.authMiddleware.Authenticate)
	{
		noteGroup.PATCH("/:id", r.noteHandler.UpdateNote)
		noteGroup.DELETE("/:id", r.noteHandler.DeleteNote)
	}

	// Alert routes that require an unlocked session
	alertGroup := e.Group("/alerts")
	alertGroup.Use(r.authMiddleware.Authenticate)
	{
		alertGroup.GET("", r.alertHandler.ListAlerts)
		alertGroup.POST("/import", r.alertHandler.ImportAlerts)
		alertGroup.GET("/:id", r.alertHandler.GetAlert)
		alertGroup.POST("/:id/link", r.alertHandler.LinkAlert)
		alertGroup.POST("/:id/resolve", r.alertHandler.ResolveAlert)
		alertGroup.POST("/:id/reopen", r.alertHandler.ReopenAlert)
		alertGroup.DELETE("/:id", r.alertHandler.DeleteAlert)
	}
}
