// Package sqlite provides the embedded SQLite-backed repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"gasreport/internal/infra/persistence/sqlrepo"
)

const defaultPath = "gasreport.db"

// Store persists records to a single SQLite file.
type Store struct {
	*sqlrepo.Repository
	path string
}

// NewStore opens (creating if needed) the database at path and applies the
// schema.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; saves are sequential anyway
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	repo := sqlrepo.New(db, sqlrepo.SQLite)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Repository: repo, path: path}, nil
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
