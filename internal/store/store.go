package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the SQLite handle and hands out repositories over it.
// Open it once at startup, inject it where needed, and Close it on shutdown.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and upgrades the schema to the latest version.
func Open(dsn string) (*Store, error) {
	return openAtVersion(dsn, LatestSchemaVersion)
}

func openAtVersion(dsn string, version int) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "open database", Err: err}
	}

	// One connection: SQLite has a single writer, and per-connection pragmas
	// must hold for every statement.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, &ErrStorageUnavailable{Op: "apply pragmas", Err: err}
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv, version); err != nil {
		drv.Close()
		return nil, &ErrStorageUnavailable{Op: "migrate schema", Err: err}
	}

	return &Store{db: db, drv: drv, seq: newSequenceCounter()}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Banks returns the question bank repository.
func (s *Store) Banks() BankRepo {
	return &bankRepo{drv: s.drv}
}

// Answers returns the answer record log.
func (s *Store) Answers() AnswerRepo {
	return &answerRepo{drv: s.drv, seq: s.seq}
}

// Wrong returns the wrong question set.
func (s *Store) Wrong() WrongRepo {
	return &wrongRepo{drv: s.drv}
}

// Progress returns the practice progress store.
func (s *Store) Progress() ProgressRepo {
	return &progressRepo{drv: s.drv}
}

// SchemaVersion reports the schema version currently applied.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	v, err := currentVersion(ctx, s.drv)
	if err != nil {
		return 0, &ErrStorageUnavailable{Op: "read schema version", Err: err}
	}
	return v, nil
}

// Reset removes every bank, answer record, wrong question and progress row
// in one transaction.
func (s *Store) Reset(ctx context.Context) error {
	err := withTx(ctx, s.drv, func(tx dialect.Tx) error {
		for _, table := range []string{tableAnswers, tableWrong, tableProgress, tableBanks} {
			if _, err := execQuery(ctx, tx, builder.Delete(table)); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return &ErrStorageUnavailable{Op: "reset", Err: err}
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
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

// DefaultDBPath resolves the database file path in priority order:
// 1. EXAMWEB_DB environment variable
// 2. $XDG_DATA_HOME/examweb/examweb.db
// 3. ~/.local/share/examweb/examweb.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("EXAMWEB_DB"); p != "" {
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

	p := filepath.Join(dataHome, "examweb", "examweb.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
