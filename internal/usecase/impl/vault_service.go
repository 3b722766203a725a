package impl

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/repository"
	"casevault/internal/domain/service"
	"casevault/internal/infra/persistence/vault"
	"casevault/internal/state"
	"casevault/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type vaultService struct {
	dirs     service.DirectoryManager
	engine   *vault.Engine
	tokens   service.TokenService
	fileRepo repository.FileRepository
	tx       repository.DocumentTransaction
	store    *state.Store
	bus      service.EventBus
	logger   *slog.Logger
}

// VaultServiceParams holds dependencies for VaultService, injected by Fx.
type VaultServiceParams struct {
	fx.In

	Dirs     service.DirectoryManager
	Engine   *vault.Engine
	Tokens   service.TokenService
	FileRepo repository.FileRepository
	Tx       repository.DocumentTransaction
	Store    *state.Store
	Bus      service.EventBus
	Logger   *slog.Logger
}

// NewVaultService creates a new vault lifecycle service instance
func NewVaultService(params VaultServiceParams) usecase.VaultUsecase {
	s := &vaultService{
		dirs:     params.Dirs,
		engine:   params.Engine,
		tokens:   params.Tokens,
		fileRepo: params.FileRepo,
		tx:       params.Tx,
		store:    params.Store,
		bus:      params.Bus,
		logger:   params.Logger,
	}

	params.Engine.SetExternalChangeHandler(func() {
		publish(context.Background(), s.bus, service.EventExternalChange, "", nil)
	})

	return s
}

func (s *vaultService) Connect(ctx context.Context, path string) (*usecase.ConnectionInfo, error) {
	handle, err := s.dirs.Acquire(ctx, path)
	if err != nil {
		return nil, err
	}

	return &usecase.ConnectionInfo{Handle: handle, Permission: service.PermissionGranted}, nil
}

func (s *vaultService) Reconnect(ctx context.Context) (*usecase.ConnectionInfo, error) {
	handle, err := s.dirs.StoredHandle(ctx)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, domainerrors.ErrNoDirectory
	}

	permission, err := s.dirs.QueryPermission(ctx, handle)
	if err != nil {
		return nil, err
	}

	return &usecase.ConnectionInfo{Handle: handle, Permission: permission}, nil
}

func (s *vaultService) RequestAccess(ctx context.Context) (*usecase.ConnectionInfo, error) {
	handle, err := s.dirs.StoredHandle(ctx)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, domainerrors.ErrNoDirectory
	}

	permission, err := s.dirs.RequestPermission(ctx, handle)
	if err != nil {
		return nil, err
	}

	if permission == service.PermissionGranted {
		if err := s.engine.Resume(ctx); err != nil {
			s.logger.Warn("resume after re-grant failed", slog.Any("error", err))
		}
	}

	return &usecase.ConnectionInfo{Handle: handle, Permission: permission}, nil
}

func (s *vaultService) Unlock(ctx context.Context, secret string) (*usecase.UnlockResult, error) {
	handle, err := s.dirs.StoredHandle(ctx)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, domainerrors.ErrNoDirectory
	}

	doc, err := s.engine.Open(ctx, handle, secret)
	if err != nil {
		return nil, err
	}
	s.store.LoadDocument(doc)

	token, expiresAt, err := s.tokens.GenerateSessionToken(handle.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint session token")
	}

	return &usecase.UnlockResult{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *vaultService) Lock(ctx context.Context) error {
	if err := s.engine.Lock(ctx); err != nil {
		return err
	}
	s.store.Reset()

	return nil
}

func (s *vaultService) Disconnect(ctx context.Context) error {
	disconnectErr := s.engine.Disconnect(ctx)
	forgetErr := s.dirs.Forget(ctx)
	s.store.Reset()

	return stderrors.Join(disconnectErr, forgetErr)
}

func (s *vaultService) Status(ctx context.Context) vault.Status {
	return s.engine.Status()
}

func (s *vaultService) Flush(ctx context.Context) error {
	return s.engine.Flush(ctx)
}

// ImportLegacy merges a legacy export into the open vault as one bulk
// mutation. Cases whose MCN already exists are skipped so re-running an
// import cannot duplicate them.
func (s *vaultService) ImportLegacy(ctx context.Context, raw []byte) (*usecase.LegacyImportResult, error) {
	converted, err := convertLegacy(raw)
	if err != nil {
		return nil, err
	}

	result := &usecase.LegacyImportResult{}

	err = s.tx.Execute(ctx, repository.WriteOptions{Bulk: true}, func(doc *entity.Document) error {
		existingMCNs := make(map[string]struct{}, len(doc.Cases))
		for _, c := range doc.Cases {
			existingMCNs[c.MCN] = struct{}{}
		}

		imported := make(map[string]struct{}, len(converted.Cases))
		for _, c := range converted.Cases {
			if c.MCN != "" {
				if _, dup := existingMCNs[c.MCN]; dup {
					continue
				}
				existingMCNs[c.MCN] = struct{}{}
			}
			imported[c.ID] = struct{}{}
			doc.Cases = append(doc.Cases, *c.Clone())
			result.Cases++
		}
		for _, p := range converted.People {
			if !personImported(converted.Cases, imported, p.ID) {
				continue
			}
			doc.People = append(doc.People, *p.Clone())
			result.People++
		}
		for _, item := range converted.Financials {
			if _, ok := imported[item.CaseID]; !ok {
				continue
			}
			doc.Financials = append(doc.Financials, *item.Clone())
			result.Financials++
		}
		for _, note := range converted.Notes {
			if _, ok := imported[note.CaseID]; !ok {
				continue
			}
			doc.Notes = append(doc.Notes, *note.Clone())
			result.Notes++
		}

		doc.RecordActivity(entity.ActivityEntry{
			ID:         uuid.NewString(),
			Timestamp:  time.Now(),
			Action:     string(service.EventLegacyImported),
			EntityKind: "vault",
			Details:    "legacy import",
		})

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist legacy import")
	}

	// Reload the cache from the merged document so the UI sees the import.
	if err := s.tx.View(ctx, func(doc *entity.Document) error {
		s.store.LoadDocument(doc)

		return nil
	}); err != nil {
		return nil, err
	}

	publish(ctx, s.bus, service.EventLegacyImported, "", result)

	return result, nil
}

func personImported(cases []*entity.Case, imported map[string]struct{}, personID string) bool {
	for _, c := range cases {
		if c.PersonID == personID {
			if _, ok := imported[c.ID]; ok {
				return true
			}
		}
	}

	return false
}

func (s *vaultService) ListFiles(ctx context.Context) ([]repository.FileInfo, error) {
	return s.fileRepo.ListDataFiles(ctx)
}

func (s *vaultService) Categories(ctx context.Context) (entity.CategoryConfig, error) {
	var config entity.CategoryConfig
	err := s.tx.View(ctx, func(doc *entity.Document) error {
		config = doc.CategoryConfig
		config.FinancialCategories = append([]string(nil), doc.CategoryConfig.FinancialCategories...)
		config.NoteCategories = append([]string(nil), doc.CategoryConfig.NoteCategories...)
		config.AlertTypes = append([]string(nil), doc.CategoryConfig.AlertTypes...)

		return nil
	})
	if err != nil {
		return entity.CategoryConfig{}, err
	}

	return config, nil
}
