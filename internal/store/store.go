package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/cypherlite/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking (ir.SchemaVersion):
// 0 - Initial schema (tables only)
// 1 - Added edge endpoint and type indexes

// Defaults applied by Open when no option overrides them.
const (
	DefaultBusyTimeout = 5 * time.Second
	DefaultJournalMode = "WAL"
	DefaultSynchronous = "NORMAL"
)

var (
	journalModes = []string{"DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF"}
	syncModes    = []string{"OFF", "NORMAL", "FULL", "EXTRA"}
)

// Store is the graph database handle.
// Uses SQLite with WAL mode and a single connection (one writer at a time).
type Store struct {
	db   *sql.DB
	path string
}

type options struct {
	busyTimeout time.Duration
	journalMode string
	synchronous string
}

// Option configures Open.
type Option func(*options)

// WithBusyTimeout sets how long a statement waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.busyTimeout = d
	}
}

// WithJournalMode sets the SQLite journal mode (WAL, DELETE, ...).
func WithJournalMode(mode string) Option {
	return func(o *options) {
		o.journalMode = strings.ToUpper(mode)
	}
}

// WithSynchronous sets the SQLite synchronous level (OFF, NORMAL, FULL, EXTRA).
func WithSynchronous(level string) Option {
	return func(o *options) {
		o.synchronous = strings.ToUpper(level)
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// Journal mode, synchronous level and busy timeout can be overridden with
// options. This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{
		busyTimeout: DefaultBusyTimeout,
		journalMode: DefaultJournalMode,
		synchronous: DefaultSynchronous,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, o); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func (o options) validate() error {
	if o.busyTimeout < 0 {
		return fmt.Errorf("busy timeout must not be negative: %s", o.busyTimeout)
	}
	if !contains(journalModes, o.journalMode) {
		return fmt.Errorf("unknown journal mode %q", o.journalMode)
	}
	if !contains(syncModes, o.synchronous) {
		return fmt.Errorf("unknown synchronous level %q", o.synchronous)
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// applyPragmas sets required SQLite configuration.
// Pragma values cannot be bound as arguments; they are validated by options.validate.
func applyPragmas(db *sql.DB, o options) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA journal_mode = %s", o.journalMode),
		fmt.Sprintf("PRAGMA synchronous = %s", o.synchronous),
		fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeout.Milliseconds()),
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
// This function is idempotent.
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

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", ir.SchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the indexes used by relationship patterns and DETACH DELETE.
func migrateToV1(db *sql.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id)",
		"CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id)",
		"CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(type)",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
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
	if !strings.EqualFold(value, expected) {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// Begin starts a transaction. Every translated query runs inside exactly one.
func (s *Store) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &sqlTx{tx: tx}, nil
}
