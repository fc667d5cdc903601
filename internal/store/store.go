package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/graphomotor/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// metaVocabulary is the store_meta key holding the feature vocabulary
// the stored results were extracted with.
const metaVocabulary = "feature_vocabulary"

// migrations[i] upgrades a database at user_version i to i+1.
//
//	v1: index analyses by session digest
//	v2: stamp the feature vocabulary in store_meta
var migrations = []func(ctx context.Context, tx *sql.Tx) error{
	func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_analyses_session ON analyses(session_digest)`)
		return err
	},
	func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS store_meta (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO store_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
			metaVocabulary, ir.FeatureVocabularyVersion)
		return err
	},
}

// Store holds analyses and task records for any number of users.
//
// A store is bound to one feature vocabulary: feature vectors and the
// records aggregated with them are only comparable within a vocabulary,
// so opening a database stamped with another one fails.
type Store struct {
	db *sql.DB
}

// Options controls how a database is opened.
type Options struct {
	// Verify re-hashes every stored result while opening and fails on
	// the first one that does not match its digest.
	Verify bool
}

// Open opens or creates the database at path and brings its schema up
// to date.
func Open(path string) (*Store, error) {
	return OpenWith(path, Options{})
}

// OpenInMemory opens a store that lives only as long as the process.
// The single open connection keeps the database alive.
func OpenInMemory() (*Store, error) {
	return Open(memoryPath)
}

// OpenWith is Open with options.
func OpenWith(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// SQLite has one writer; a second connection would also see a
	// different :memory: database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	ctx := context.Background()
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	if opts.Verify {
		if err := s.VerifyAll(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("open store %s: %w", path, err)
		}
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Vocabulary returns the feature vocabulary the store is stamped with.
func (s *Store) Vocabulary(ctx context.Context) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = ?`, metaVocabulary).Scan(&v)
	if err != nil {
		return "", fmt.Errorf("read vocabulary: %w", err)
	}
	return v, nil
}

// VerifyAll re-hashes every stored result in seq order and returns the
// first VerifyAnalysis failure.
func (s *Store) VerifyAll(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses ORDER BY seq ASC, id COLLATE BINARY ASC`)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if err := VerifyAnalysis(a); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
	}
	return rows.Err()
}

func (s *Store) init(ctx context.Context) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		return err
	}

	v, err := s.Vocabulary(ctx)
	if err != nil {
		return err
	}
	if v != ir.FeatureVocabularyVersion {
		return fmt.Errorf("%w: database holds %q, extractor provides %q",
			ErrVocabularyMismatch, v, ir.FeatureVocabularyVersion)
	}
	return nil
}

// migrate applies each pending migration with its user_version bump in
// one transaction.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("schema version %d is newer than this build (%d)", version, len(migrations))
	}

	for v := version; v < len(migrations); v++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if err := migrations[v](ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	return nil
}

// pragma returns the current value of a pragma. Used by tests.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}
