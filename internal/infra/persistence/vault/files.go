package vault

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"casevault/config"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/repository"
	"casevault/internal/errors"
)

// fileRepository gives CSV import/export and report templates access to
// auxiliary files in the granted directory. The vault data file and its
// backup are off limits; only the engine writes those.
type fileRepository struct {
	engine *Engine
	cfg    *config.Config
}

// NewFileRepository creates the auxiliary file repository.
func NewFileRepository(engine *Engine, cfg *config.Config) repository.FileRepository {
	return &fileRepository{engine: engine, cfg: cfg}
}

// DirectoryPath returns the granted directory path, or ErrNoDirectory when
// no handle is connected.
func (e *Engine) DirectoryPath() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle == nil {
		return "", domainerrors.ErrNoDirectory
	}

	return e.handle.Path, nil
}

func (r *fileRepository) resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", domainerrors.ErrValidationFailed.WithDetails("invalid file name")
	}
	if name == r.cfg.Vault.FileName || name == r.cfg.Vault.FileName+r.cfg.Vault.BackupSuffix {
		return "", domainerrors.ErrValidationFailed.WithDetails("vault data file is not accessible here")
	}

	dir, err := r.engine.DirectoryPath()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, name), nil
}

func (r *fileRepository) ReadNamedFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	path, err := r.resolve(name)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrNotFound
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, domainerrors.ErrPermissionDenied
		}

		return nil, domainerrors.NewPersistenceError(err, "read file")
	}

	return raw, nil
}

func (r *fileRepository) WriteNamedFile(ctx context.Context, name string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.ErrAborted
	}

	path, err := r.resolve(name)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, payload, 0o600); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return domainerrors.ErrPermissionDenied
		}

		return domainerrors.NewPersistenceError(err, "write file")
	}

	return nil
}

func (r *fileRepository) ReadTextFile(ctx context.Context, name string) (string, error) {
	raw, err := r.ReadNamedFile(ctx, name)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

func (r *fileRepository) ListDataFiles(ctx context.Context) ([]repository.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	dir, err := r.engine.DirectoryPath()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, domainerrors.ErrPermissionDenied
		}

		return nil, domainerrors.NewPersistenceError(err, "list directory")
	}

	infos := make([]repository.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == r.cfg.Vault.FileName || name == r.cfg.Vault.FileName+r.cfg.Vault.BackupSuffix {
			continue
		}
		meta, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, repository.FileInfo{
			Name:    name,
			Size:    meta.Size(),
			ModTime: meta.ModTime().Unix(),
		})
	}

	return infos, nil
}
