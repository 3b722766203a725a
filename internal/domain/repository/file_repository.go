package repository

import "context"

// FileInfo describes one auxiliary file in the vault directory.
type FileInfo struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time"` // Unix seconds.
}

// FileRepository exposes auxiliary file access in the granted directory for
// CSV import/export and report templates. It never touches the vault data
// file; that file is owned exclusively by the autosave engine.
type FileRepository interface {
	ReadNamedFile(ctx context.Context, name string) ([]byte, error)
	WriteNamedFile(ctx context.Context, name string, payload []byte) error
	ReadTextFile(ctx context.Context, name string) (string, error)
	ListDataFiles(ctx context.Context) ([]FileInfo, error)
}
