package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres through database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver names accepted by OpenDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
	mastery *masteryRepo
	now     func() time.Time
}

// Open creates a new Store connected to the SQLite database at dsn.
func Open(dsn string) (*Store, error) {
	return OpenDriver(DriverSQLite, dsn)
}

// OpenDriver connects with the given database/sql driver, applies the
// SQLite pragmas where relevant and creates missing tables.
func OpenDriver(driver, dsn string) (*Store, error) {
	var d string
	switch driver {
	case DriverSQLite:
		d = dialect.SQLite
	case DriverPostgres, "postgres":
		driver, d = DriverPostgres, dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if d == dialect.SQLite {
		// One connection keeps the pragmas and in-memory databases alive and
		// leaves write serialization to database/sql.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	if err := migrate(context.Background(), db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db, d)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, dialect: d, seq: seq, now: time.Now}
	s.mastery = &masteryRepo{store: s}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name of the connection.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// builder returns an ent SQL builder for the store's dialect.
func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate creates the tables the repositories need.
func migrate(ctx context.Context, db *sql.DB, d string) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d == dialect.Postgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS mastery_records (
			learner_id TEXT NOT NULL,
			exercise_id TEXT NOT NULL,
			box INTEGER NOT NULL CHECK (box BETWEEN 2 AND 4),
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (learner_id, exercise_id)
		)`,
		`CREATE TABLE IF NOT EXISTS mastery_events (
			id ` + serial + `,
			sequence BIGINT NOT NULL,
			learner_id TEXT NOT NULL,
			exercise_id TEXT NOT NULL,
			from_box INTEGER NOT NULL,
			to_box INTEGER NOT NULL,
			cause TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS mastery_events_learner ON mastery_events (learner_id, sequence)`,
		`CREATE TABLE IF NOT EXISTS attempt_logs (
			id ` + serial + `,
			exercise_id TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			UNIQUE (exercise_id, text)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. PHYSIK_DB environment variable
// 2. $XDG_DATA_HOME/physiktrainer/physiktrainer.db
// 3. ~/.local/share/physiktrainer/physiktrainer.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PHYSIK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "physiktrainer", "physiktrainer.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
