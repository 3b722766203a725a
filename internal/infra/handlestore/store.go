// Package handlestore is the small durable key-value store that persists
// the directory handle (and nothing else) across sessions. It lives outside
// the vault directory so a revoked or disconnected vault does not take the
// handle record with it.
package handlestore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"casevault/config"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// ErrKeyNotFound is returned when the bucket/key pair has no value.
var ErrKeyNotFound = errors.New("handlestore: key not found")

// Store is a sqlite-backed bucket/key → blob store.
type Store struct {
	db *sql.DB
}

// Params holds dependencies for the store, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
}

// New opens (creating if needed) the store at the configured path and
// registers its close on shutdown.
func New(params Params) (*Store, error) {
	store, err := Open(params.Config.HandleStore.Path)
	if err != nil {
		return nil, err
	}
	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

// Open opens the store at path without any lifecycle wiring. Used directly
// by tests.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrap(err, "create handle store directory")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		bucket TEXT NOT NULL,
		key TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (bucket, key)
	)`); err != nil {
		_ = db.Close()

		return nil, errors.Wrap(err, "create kv table")
	}

	return &Store{db: db}, nil
}

// Get returns the value stored under bucket/key, or ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM kv WHERE bucket = ? AND key = ?`, bucket, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select kv")
	}

	return payload, nil
}

// Put upserts the value under bucket/key.
func (s *Store) Put(ctx context.Context, bucket, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (bucket, key, payload) VALUES (?, ?, ?)
		 ON CONFLICT (bucket, key) DO UPDATE SET payload = excluded.payload`,
		bucket, key, payload,
	)

	return errors.Wrap(err, "upsert kv")
}

// Delete removes the value under bucket/key. Deleting an absent key is a
// no-op.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE bucket = ? AND key = ?`, bucket, key,
	)

	return errors.Wrap(err, "delete kv")
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "close sqlite")
}
