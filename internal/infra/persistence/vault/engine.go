// Package vault implements the persistence engine: the autosave state
// machine that owns the authoritative document, debounces writes, encrypts
// on the way out, and recovers from transient failures.
package vault

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"casevault/config"
	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/lifecycle"
	"casevault/internal/domain/repository"
	"casevault/internal/domain/service"
	"casevault/internal/errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/fx"
)

// selfWriteWindow is how long after our own rename the file watcher ignores
// events on the data file.
const selfWriteWindow = 2 * time.Second

// Engine owns the authoritative in-memory document and its on-disk form.
// All mutations flow through Execute; the engine debounces them into
// backup-then-replace writes and tracks save health for the status surface.
type Engine struct {
	cfg    *config.Config
	codec  service.EnvelopeCodec
	logger *slog.Logger

	mu            sync.Mutex
	handle        *service.DirectoryHandle
	key           service.Key
	salt          []byte
	doc           *entity.Document
	state         EngineState
	message       string
	permission    service.PermissionState
	lastSave      *time.Time
	failures      int
	pending       int
	gen           uint64
	savedGen      uint64
	bulk          bool
	timer         *time.Timer
	suppressUntil time.Time
	onExternal    func()

	// saveMu serializes whole save cycles so the debounce timer and an
	// explicit Flush never race on the same temp file.
	saveMu sync.Mutex

	watcher     *fsnotify.Watcher
	watcherDone chan struct{}
}

// Params holds dependencies for the engine, injected by Fx.
type Params struct {
	fx.In

	Config    *config.Config
	Codec     service.EnvelopeCodec
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

// New creates the persistence engine and registers a shutdown flush.
func New(params Params) *Engine {
	engine := &Engine{
		cfg:        params.Config,
		codec:      params.Codec,
		logger:     params.Logger,
		state:      StateUninitialized,
		permission: service.PermissionPrompt,
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
			defer cancel()

			return engine.Stop(stopCtx)
		},
	})

	return engine
}

// SetExternalChangeHandler registers the callback invoked when the data
// file changes on disk outside this process. Must be set before Open.
func (e *Engine) SetExternalChangeHandler(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onExternal = fn
}

// Open connects to the vault inside the granted directory and unlocks it
// with secret. A missing data file starts a fresh document; a structurally
// damaged canonical file falls back to the backup copy. The returned
// document is a copy for the caller to load into the state cache.
func (e *Engine) Open(ctx context.Context, handle *service.DirectoryHandle, secret string) (*entity.Document, error) {
	if handle == nil {
		return nil, domainerrors.ErrNoDirectory
	}
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrAborted
	}

	e.mu.Lock()
	e.handle = handle
	e.state = StateConnecting
	e.message = "opening vault"
	e.mu.Unlock()

	doc, key, salt, created, err := e.loadDocument(handle, secret)
	if err != nil {
		e.mu.Lock()
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, domainerrors.ErrPermissionDenied) {
			e.state = StateWaiting
			e.permission = service.PermissionPrompt
			e.message = "directory access lost"
		} else {
			e.state = StateError
			e.message = err.Error()
		}
		e.mu.Unlock()

		return nil, err
	}

	e.mu.Lock()
	e.doc = doc
	e.key = key
	e.salt = salt
	e.state = StateRunning
	e.permission = service.PermissionGranted
	e.message = ""
	e.failures = 0
	e.pending = 0
	e.gen = 0
	e.savedGen = 0
	if created {
		e.gen = 1
	}
	e.mu.Unlock()

	if created {
		if err := e.saveNow(ctx); err != nil {
			return nil, err
		}
	}

	if err := e.startWatcher(handle); err != nil {
		e.logger.Warn("file watcher unavailable", slog.Any("error", err))
	}

	return doc.Clone(), nil
}

// loadDocument reads and decodes the data file, trying the backup when the
// canonical file is structurally damaged.
func (e *Engine) loadDocument(handle *service.DirectoryHandle, secret string) (*entity.Document, service.Key, []byte, bool, error) {
	path := filepath.Join(handle.Path, e.cfg.Vault.FileName)

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			doc, key, salt, mintErr := e.newVault(secret)

			return doc, key, salt, true, mintErr
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, nil, nil, false, domainerrors.ErrPermissionDenied
		}

		return nil, nil, nil, false, domainerrors.NewPersistenceError(err, "read vault file")
	}

	doc, key, salt, err := decodeDocument(raw, e.codec, secret)
	if err == nil {
		key, salt, err = e.ensureEncryption(key, salt, secret)

		return doc, key, salt, false, err
	}

	// Wrong password and legacy layouts are not corruption; the backup
	// would fail the same way.
	if errors.Is(err, domainerrors.ErrWrongKey) || errors.Is(err, domainerrors.ErrLegacyFormat) {
		return nil, nil, nil, false, err
	}

	backupPath := path + e.cfg.Vault.BackupSuffix
	backupRaw, backupErr := os.ReadFile(backupPath)
	if backupErr != nil {
		return nil, nil, nil, false, err
	}
	doc, key, salt, backupErr = decodeDocument(backupRaw, e.codec, secret)
	if backupErr != nil {
		return nil, nil, nil, false, err
	}

	e.logger.Warn("canonical vault file damaged, recovered from backup",
		slog.String("path", path))

	key, salt, err = e.ensureEncryption(key, salt, secret)

	return doc, key, salt, false, err
}

// newVault mints key material for a fresh document.
func (e *Engine) newVault(secret string) (*entity.Document, service.Key, []byte, error) {
	doc := entity.NewDocument()
	if !e.cfg.Vault.Encrypt {
		return doc, nil, nil, nil
	}

	salt, err := e.codec.NewSalt()
	if err != nil {
		return nil, nil, nil, err
	}

	return doc, e.codec.DeriveKey(secret, salt), salt, nil
}

// ensureEncryption upgrades a plaintext vault to encrypted form on the next
// save when encryption is enabled.
func (e *Engine) ensureEncryption(key service.Key, salt []byte, secret string) (service.Key, []byte, error) {
	if !e.cfg.Vault.Encrypt || len(key) != 0 {
		return key, salt, nil
	}

	freshSalt, err := e.codec.NewSalt()
	if err != nil {
		return nil, nil, err
	}

	return e.codec.DeriveKey(secret, freshSalt), freshSalt, nil
}

// Execute applies fn to the authoritative document. fn runs against a
// clone; an error from fn leaves the document untouched and schedules
// nothing. On success the mutation is queued behind the debounce window,
// or written synchronously when opts.Flush is set.
func (e *Engine) Execute(ctx context.Context, opts repository.WriteOptions, fn func(doc *entity.Document) error) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.ErrAborted
	}

	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()

		return domainerrors.ErrVaultLocked
	}

	work := e.doc.Clone()
	if err := fn(work); err != nil {
		e.mu.Unlock()

		return err
	}

	e.doc = work
	e.gen++
	e.pending++
	if opts.Bulk {
		e.bulk = true
	}

	if opts.Flush {
		if e.timer != nil {
			e.timer.Stop()
		}
		e.mu.Unlock()

		return e.saveNow(ctx)
	}

	e.scheduleLocked()
	e.mu.Unlock()

	return nil
}

// View applies fn to a read-only copy of the current document.
func (e *Engine) View(ctx context.Context, fn func(doc *entity.Document) error) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.ErrAborted
	}

	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()

		return domainerrors.ErrVaultLocked
	}
	snapshot := e.doc.Clone()
	e.mu.Unlock()

	return fn(snapshot)
}

// scheduleLocked arms or re-arms the debounce timer. Caller holds e.mu.
func (e *Engine) scheduleLocked() {
	debounce := e.cfg.Autosave.Debounce
	if e.bulk {
		debounce = e.cfg.Autosave.BulkDebounce
	}

	if e.timer == nil {
		e.timer = time.AfterFunc(debounce, e.flushAsync)

		return
	}
	e.timer.Reset(debounce)
}

func (e *Engine) flushAsync() {
	if err := e.saveNow(context.Background()); err != nil {
		e.logger.Error("autosave failed", slog.Any("error", err))
	}
}

// Flush forces any pending mutations to disk before returning.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.mu.Unlock()

	return e.saveNow(ctx)
}

// saveNow snapshots the document, writes it with retries, and updates the
// state machine. Concurrent mutations during the write keep their own
// generation and trigger another save afterwards.
func (e *Engine) saveNow(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if e.doc == nil || e.handle == nil || e.gen == e.savedGen {
		e.mu.Unlock()

		return nil
	}

	payload, err := encodeDocument(e.doc, e.codec, e.key, e.salt)
	if err != nil {
		e.state = StateError
		e.message = err.Error()
		e.mu.Unlock()

		return err
	}

	snapGen := e.gen
	pendingSnap := e.pending
	path := filepath.Join(e.handle.Path, e.cfg.Vault.FileName)
	backupPath := path + e.cfg.Vault.BackupSuffix
	e.state = StateSaving
	e.message = "saving"
	e.bulk = false
	e.mu.Unlock()

	err = e.writeWithRetry(ctx, path, backupPath, payload)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			// Pending mutations survive; the save resumes after re-grant.
			e.state = StateWaiting
			e.permission = service.PermissionPrompt
			e.message = "directory access lost"

			return domainerrors.ErrPermissionDenied
		}
		e.state = StateError
		e.message = err.Error()

		return domainerrors.NewPersistenceError(err, "autosave exhausted retries")
	}

	e.savedGen = snapGen
	e.failures = 0
	now := time.Now()
	e.lastSave = &now
	e.pending -= pendingSnap
	if e.pending < 0 {
		e.pending = 0
	}
	e.state = StateRunning
	e.message = ""
	if e.gen > e.savedGen {
		e.scheduleLocked()
	}

	return nil
}

// writeWithRetry runs the physical write under the exponential retry
// policy. Permission failures abort immediately; everything else retries
// up to the configured ceiling.
func (e *Engine) writeWithRetry(ctx context.Context, path, backupPath string, payload []byte) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.cfg.Autosave.InitialBackoff
	policy.MaxInterval = e.cfg.Autosave.MaxBackoff
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0

	operation := func() error {
		err := e.writeFile(path, backupPath, payload)
		if err != nil && errors.Is(err, fs.ErrPermission) {
			return backoff.Permanent(err)
		}

		return err
	}
	notify := func(err error, next time.Duration) {
		e.mu.Lock()
		e.state = StateRetrying
		e.failures++
		e.message = err.Error()
		e.mu.Unlock()

		e.logger.Warn("vault write failed, retrying",
			slog.Any("error", err),
			slog.Duration("next_attempt_in", next))
	}

	retryPolicy := backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(e.cfg.Autosave.MaxRetries)), ctx)

	return backoff.RetryNotify(operation, retryPolicy, notify)
}

// writeFile performs one backup-then-replace write: the payload lands in a
// temp file, is read back and verified, the previous canonical file is
// copied aside, and the temp file is renamed into place.
func (e *Engine) writeFile(path, backupPath string, payload []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return errors.Wrap(err, "write temp file")
	}

	written, err := os.ReadFile(tmp)
	if err != nil {
		return errors.Wrap(err, "verify temp file")
	}
	if !bytes.Equal(written, payload) {
		return errors.New("temp file verification mismatch")
	}

	if previous, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(backupPath, previous, 0o600); err != nil {
			return errors.Wrap(err, "write backup file")
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "read previous file")
	}

	e.mu.Lock()
	e.suppressUntil = time.Now().Add(selfWriteWindow)
	e.mu.Unlock()

	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "replace vault file")
	}

	return nil
}

// Resume reschedules a pending save after directory access was re-granted.
func (e *Engine) Resume(ctx context.Context) error {
	e.mu.Lock()
	e.permission = service.PermissionGranted
	if e.state == StateWaiting {
		e.state = StateRunning
		e.message = ""
	}
	dirty := e.gen > e.savedGen
	e.mu.Unlock()

	if !dirty {
		return nil
	}

	return e.saveNow(ctx)
}

// Lock flushes pending writes and discards the key and document. The
// directory connection survives; Open with the secret unlocks again.
func (e *Engine) Lock(ctx context.Context) error {
	if err := e.Flush(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = nil
	e.key = nil
	e.state = StateConnecting
	e.message = "vault locked"
	e.pending = 0
	e.gen = 0
	e.savedGen = 0

	return nil
}

// Disconnect flushes, stops watching, and releases the directory handle.
func (e *Engine) Disconnect(ctx context.Context) error {
	flushErr := e.Flush(ctx)
	e.stopWatcher()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.handle = nil
	e.doc = nil
	e.key = nil
	e.salt = nil
	e.state = StateUninitialized
	e.permission = service.PermissionPrompt
	e.message = ""
	e.pending = 0
	e.gen = 0
	e.savedGen = 0

	return flushErr
}

// Stop flushes and halts the engine for process shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	flushErr := e.Flush(ctx)
	e.stopWatcher()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.state = StateStopped
	e.message = ""

	return flushErr
}

// Status reports a point-in-time snapshot of the state machine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	var lastSave *time.Time
	if e.lastSave != nil {
		t := *e.lastSave
		lastSave = &t
	}

	return Status{
		State:               e.state,
		Message:             e.message,
		Timestamp:           time.Now(),
		PermissionStatus:    e.permission,
		LastSaveTime:        lastSave,
		ConsecutiveFailures: e.failures,
		PendingWrites:       e.pending,
	}
}

// startWatcher watches the granted directory for external changes to the
// data file. Our own renames are suppressed for a short window.
func (e *Engine) startWatcher(handle *service.DirectoryHandle) error {
	e.stopWatcher()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	if err := watcher.Add(handle.Path); err != nil {
		watcher.Close()

		return errors.Wrap(err, "watch directory")
	}

	done := make(chan struct{})
	e.mu.Lock()
	e.watcher = watcher
	e.watcherDone = done
	e.mu.Unlock()

	dataPath := filepath.Join(handle.Path, e.cfg.Vault.FileName)
	go e.watchLoop(watcher, done, dataPath)

	return nil
}

func (e *Engine) watchLoop(watcher *fsnotify.Watcher, done chan struct{}, dataPath string) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != dataPath {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			e.mu.Lock()
			selfWrite := time.Now().Before(e.suppressUntil)
			handler := e.onExternal
			e.mu.Unlock()

			if selfWrite {
				continue
			}

			e.logger.Warn("vault file changed outside this process",
				slog.String("path", event.Name))
			if handler != nil {
				handler()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Warn("file watcher error", slog.Any("error", err))
		}
	}
}

func (e *Engine) stopWatcher() {
	e.mu.Lock()
	watcher := e.watcher
	done := e.watcherDone
	e.watcher = nil
	e.watcherDone = nil
	e.mu.Unlock()

	if done != nil {
		close(done)
	}
	if watcher != nil {
		watcher.Close()
	}
}
