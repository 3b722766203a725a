package main

import (
	"context"
	"log/slog"
	"os"

	"casevault/config"
	"casevault/internal/delivery"
	"casevault/internal/delivery/api"
	apimiddleware "casevault/internal/delivery/api/middleware"
	"casevault/internal/delivery/api/router/handler"
	"casevault/internal/domain/repository"
	"casevault/internal/infra/auth"
	"casevault/internal/infra/crypto"
	"casevault/internal/infra/eventbus"
	"casevault/internal/infra/fsdir"
	"casevault/internal/infra/handlestore"
	logs "casevault/internal/infra/log"
	"casevault/internal/infra/persistence/vault"
	"casevault/internal/state"
	"casevault/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		state.New,
		handlestore.New,
		vault.New,
		newDocumentTransaction,
		newCoalescingQueue,
	)
}

// newDocumentTransaction exposes the engine through its transaction
// interface for everything that only mutates the document.
func newDocumentTransaction(engine *vault.Engine) repository.DocumentTransaction {
	return engine
}

// newCoalescingQueue builds the per-entity write coalescing queue on top of
// the engine.
func newCoalescingQueue(engine *vault.Engine, logger *slog.Logger) *vault.CoalescingQueue {
	return vault.NewCoalescingQueue(engine, logger)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			vault.NewCaseRepository,
			vault.NewPersonRepository,
			vault.NewFinancialRepository,
			vault.NewNoteRepository,
			vault.NewAlertRepository,
			vault.NewFileRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTService,
			crypto.New,
			fsdir.New,
			eventbus.New,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewVaultService,
			impl.NewCaseService,
			impl.NewPersonService,
			impl.NewFinancialService,
			impl.NewNoteService,
			impl.NewAlertService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewAuthMiddleware,
			apimiddleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewVaultHandler,
			handler.NewCaseHandler,
			handler.NewFinancialHandler,
			handler.NewNoteHandler,
			handler.NewAlertHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
