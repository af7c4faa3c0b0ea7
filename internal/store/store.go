package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/stride/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (tables only)
// 1 - Owner index on entities, task index on completions
const currentSchemaVersion = 1

// MemoryPath selects the in-memory backend in OpenPath.
const MemoryPath = ":memory:"

// backend is the physical storage behind a Store.
type backend interface {
	get(ctx context.Context, kind, id string) ([]byte, bool, error)
	put(ctx context.Context, kind, id, owner string, body []byte) error
	del(ctx context.Context, kind, id string) (bool, error)
	ownerIDs(ctx context.Context, kind, owner string) ([]string, error)
	list(ctx context.Context, kind string) ([][]byte, error)

	balance(ctx context.Context, owner string) (uint32, error)
	setBalance(ctx context.Context, owner string, points uint32) error

	appendCompletion(ctx context.Context, taskID string, at uint64) error
	completions(ctx context.Context, taskID string) ([]uint64, error)
}

// Store groups the entity collections, balances and completion log over one
// backend.
type Store struct {
	b   backend
	db  *sql.DB
	mem *memBackend
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Store {
	m := newMemBackend()
	return &Store{b: m, mem: m}
}

// OpenPath opens a SQLite database at path, or a memory store for
// MemoryPath.
func OpenPath(path string) (*Store, error) {
	if path == MemoryPath {
		return NewMemory(), nil
	}
	return Open(path)
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{b: sqlBackend{q: db}, db: db}, nil
}

// Close closes the database connection. It is a no-op for memory stores.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Backend names the storage backend, for logging.
func (s *Store) Backend() string {
	if s.db != nil {
		return "sqlite"
	}
	return "memory"
}

// Atomic runs fn against a view of the store whose writes become visible
// only if fn returns nil. The view must not be used after fn returns.
//
// On the memory backend the view is a copy that replaces the live maps on
// success, so writers must be serialized by the caller. Taking the copy
// costs time proportional to the whole store, which suits scenario and CLI
// sized data; large in-process stores should use the SQLite backend.
func (s *Store) Atomic(ctx context.Context, fn func(tx *Store) error) error {
	switch {
	case s.db != nil:
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		if err := fn(&Store{b: sqlBackend{q: tx}}); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	case s.mem != nil:
		view := s.mem.snapshot()
		if err := fn(&Store{b: view}); err != nil {
			return err
		}
		s.mem.restore(view)
		return nil
	default:
		// Already inside Atomic.
		return fn(s)
	}
}

// Tasks returns the task collection.
func (s *Store) Tasks() *Collection[model.Task] {
	return newCollection(s.b, model.EntityTask, func(t *model.Task) (string, string) { return t.ID, t.Owner })
}

// Habits returns the habit collection.
func (s *Store) Habits() *Collection[model.Habit] {
	return newCollection(s.b, model.EntityHabit, func(h *model.Habit) (string, string) { return h.ID, h.Owner })
}

// Rewards returns the reward collection.
func (s *Store) Rewards() *Collection[model.Reward] {
	return newCollection(s.b, model.EntityReward, func(r *model.Reward) (string, string) { return r.ID, r.Owner })
}

// TimeSlots returns the time slot collection.
func (s *Store) TimeSlots() *Collection[model.TimeSlot] {
	return newCollection(s.b, model.EntityTimeSlot, func(t *model.TimeSlot) (string, string) { return t.ID, t.Owner })
}

// Balances returns the point balances.
func (s *Store) Balances() Balances {
	return Balances{b: s.b}
}

// Completions returns the task completion log.
func (s *Store) Completions() CompletionLog {
	return CompletionLog{b: s.b}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the lookup indexes. IF NOT EXISTS keeps it idempotent.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_entities_owner ON entities(kind, owner, id);
		CREATE INDEX IF NOT EXISTS idx_completions_task ON completions(task_id, seq);
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
