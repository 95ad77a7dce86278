package statestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"scriptforge/internal/config"
	"scriptforge/internal/logging"
	"scriptforge/internal/project"
)

// StateKey addresses the application state document.
const StateKey = "scriptforge_workshop_data"

const lockRetryDelay = 50 * time.Millisecond

// Store is the Project Store service. Reads come from the in-memory snapshot;
// every mutation reloads the stored document under an exclusive file lock,
// applies the transition and writes the result before releasing the lock.
type Store struct {
	db       *sql.DB
	path     string
	lockPath string
	logger   *slog.Logger

	mu       sync.Mutex
	snapshot project.ApplicationState
}

// Open initializes or connects to the state database and loads the current
// snapshot.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	dbPath := cfg.StatePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:       db,
		path:     dbPath,
		lockPath: filepath.Join(cfg.Paths.DataDir, "state.lock"),
		logger:   logging.NewComponentLogger(logger, "statestore"),
	}
	ctx = ensureContext(ctx)
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	state, err := store.read(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.snapshot = state
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the current in-memory state. The result is a private copy.
func (s *Store) Snapshot() project.ApplicationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// Reload replaces the snapshot with the stored document.
func (s *Store) Reload(ctx context.Context) (project.ApplicationState, error) {
	state, err := s.read(ensureContext(ctx))
	if err != nil {
		return project.ApplicationState{}, err
	}
	s.mu.Lock()
	s.snapshot = state
	s.mu.Unlock()
	return state.Clone(), nil
}

// Mutate applies fn to the latest stored state and persists the result. When
// fn fails nothing is written and the error is returned unchanged.
func (s *Store) Mutate(ctx context.Context, fn func(project.ApplicationState) (project.ApplicationState, error)) (project.ApplicationState, error) {
	ctx = ensureContext(ctx)
	lock := flock.New(s.lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return project.ApplicationState{}, fmt.Errorf("acquire state lock: %w", err)
	}
	if !locked {
		return project.ApplicationState{}, fmt.Errorf("acquire state lock: %s is held", s.lockPath)
	}
	defer func() { _ = lock.Unlock() }()

	current, err := s.read(ctx)
	if err != nil {
		return project.ApplicationState{}, err
	}
	s.mu.Lock()
	s.snapshot = current
	s.mu.Unlock()

	next, err := fn(current.Clone())
	if err != nil {
		return project.ApplicationState{}, err
	}
	next = next.Sanitized()

	if err := s.write(ctx, next); err != nil {
		return project.ApplicationState{}, err
	}
	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()
	return next.Clone(), nil
}

// read loads the stored document. A missing or undecodable document yields an
// empty state.
func (s *Store) read(ctx context.Context) (project.ApplicationState, error) {
	raw, found, err := s.getValue(ctx, StateKey)
	if err != nil {
		return project.ApplicationState{}, fmt.Errorf("load state: %w", err)
	}
	if !found {
		return project.Empty(), nil
	}
	var state project.ApplicationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		readErr := &PersistenceReadError{Key: StateKey, Err: err}
		logging.WarnWithContext(s.logger, "stored state unreadable; starting empty", "state_decode_failed",
			logging.Error(readErr),
			logging.Int("bytes", len(raw)),
			logging.String(logging.FieldImpact, "previous projects are not visible until the document is repaired"),
		)
		return project.Empty(), nil
	}
	return state.Sanitized(), nil
}

func (s *Store) write(ctx context.Context, state project.ApplicationState) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.putValue(ctx, StateKey, string(encoded)); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}
