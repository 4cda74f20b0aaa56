// Package sqlrepo implements domain.Repository over database/sql. All
// records share one table; the parent column links the report tree and
// cascading deletes walk it with a recursive query.
package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"gasreport/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.Repository = (*Repository)(nil)

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	Name string
	// Numbered switches `?` placeholders to `$1`, `$2`, ...
	Numbered bool
	// Schema is executed statement by statement by Migrate.
	Schema []string
}

// SQLite is the modernc.org/sqlite dialect.
var SQLite = Dialect{
	Name: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			parent_id TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS records_parent_kind ON records(parent_id, kind)`,
	},
}

// Postgres is the pgx dialect.
var Postgres = Dialect{
	Name:     "postgres",
	Numbered: true,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS records (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			parent_id TEXT NOT NULL DEFAULT '',
			payload JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS records_parent_kind ON records(parent_id, kind)`,
	},
}

const (
	insertSQL   = `INSERT INTO records (id, kind, parent_id, payload) VALUES (?, ?, ?, ?)`
	updateSQL   = `UPDATE records SET payload = ? WHERE id = ? AND kind = ?`
	findOneSQL  = `SELECT id, kind, parent_id, payload FROM records WHERE id = ? AND kind = ?`
	childrenSQL = `SELECT id, kind, parent_id, payload FROM records WHERE kind = ? AND parent_id = ? ORDER BY seq`
	cascadeSQL  = `WITH RECURSIVE doomed(id) AS (
		SELECT id FROM records WHERE kind = ? AND parent_id = ?
		UNION ALL
		SELECT r.id FROM records r JOIN doomed d ON r.parent_id = d.id
	)
	DELETE FROM records WHERE id IN (SELECT id FROM doomed)`
)

// Repository stores records in a single SQL table.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	newID   func() string
}

// New wraps db. Call Migrate before first use.
func New(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{db: db, dialect: dialect, newID: uuid.NewString}
}

// Migrate applies the dialect schema.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range r.dialect.Schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply %s schema: %w", r.dialect.Name, err)
		}
	}
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (r *Repository) DB() *sql.DB { return r.db }

// Close closes the underlying database.
func (r *Repository) Close() error { return r.db.Close() }

// Insert implements domain.Repository.
func (r *Repository) Insert(ctx context.Context, kind domain.EntityKind, parentID string, fields domain.Fields) (string, error) {
	payload, err := encode(fields)
	if err != nil {
		return "", err
	}
	id := r.newID()
	if _, err := r.db.ExecContext(ctx, r.rebind(insertSQL), id, string(kind), parentID, payload); err != nil {
		return "", fmt.Errorf("insert %s: %w", kind, err)
	}
	return id, nil
}

// Update implements domain.Repository.
func (r *Repository) Update(ctx context.Context, kind domain.EntityKind, id string, fields domain.Fields) error {
	payload, err := encode(fields)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.rebind(updateSQL), payload, id, string(kind))
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	if n == 0 {
		return domain.ErrNotFound{Kind: kind, ID: id}
	}
	return nil
}

// DeleteWhere implements domain.Repository.
func (r *Repository) DeleteWhere(ctx context.Context, kind domain.EntityKind, parentID string) error {
	if _, err := r.db.ExecContext(ctx, r.rebind(cascadeSQL), string(kind), parentID); err != nil {
		return fmt.Errorf("delete %s under %s: %w", kind, parentID, err)
	}
	return nil
}

// FindOne implements domain.Repository.
func (r *Repository) FindOne(ctx context.Context, kind domain.EntityKind, id string) (domain.Record, bool, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(findOneSQL), id, string(kind))
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("select %s: %w", kind, err)
	}
	return rec, true, nil
}

// FindChildren implements domain.Repository.
func (r *Repository) FindChildren(ctx context.Context, kind domain.EntityKind, parentID string) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(childrenSQL), string(kind), parentID)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", kind, err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (domain.Record, error) {
	var (
		rec     domain.Record
		kind    string
		payload []byte
	)
	if err := s.Scan(&rec.ID, &kind, &rec.ParentID, &payload); err != nil {
		return domain.Record{}, err
	}
	rec.Kind = domain.EntityKind(kind)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rec.Fields); err != nil {
			return domain.Record{}, fmt.Errorf("decode payload of %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

// encode renders fields as a JSON string; jsonb columns take text input.
func encode(fields domain.Fields) (string, error) {
	if fields == nil {
		fields = domain.Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(data), nil
}

// rebind rewrites `?` placeholders for dialects with numbered parameters.
func (r *Repository) rebind(query string) string {
	if !r.dialect.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
