package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formstate/pkg/model"
)

const (
	kindProduct    = "product"
	kindCollection = "collection"
	kindCategory   = "category"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	kind TEXT NOT NULL,
	id   TEXT NOT NULL,
	name TEXT NOT NULL,
	body TEXT NOT NULL,
	PRIMARY KEY (kind, id)
);
CREATE INDEX IF NOT EXISTS documents_kind_name ON documents (kind, name);
`

// SQLStore implements Store on SQLite. Records are stored as JSON
// documents keyed by kind and id.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens (and migrates) a SQLite database at dsn, e.g.
// "file:catalog.db" or ":memory:".
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: migrate: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) PutProduct(ctx context.Context, p Product) error {
	return put(ctx, s.db, kindProduct, p.ID, p.Name, p)
}

func (s *SQLStore) PutCollection(ctx context.Context, c Collection) error {
	return put(ctx, s.db, kindCollection, c.ID, c.Name, c)
}

func (s *SQLStore) PutCategory(ctx context.Context, c Category) error {
	return put(ctx, s.db, kindCategory, c.ID, c.Name, c)
}

func (s *SQLStore) Product(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := get(ctx, s.db, kindProduct, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLStore) Collection(ctx context.Context, id string) (*Collection, error) {
	var c Collection
	if err := get(ctx, s.db, kindCollection, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) SearchCollections(ctx context.Context, query string, page PageRequest) (Page[Collection], error) {
	items, err := search[Collection](ctx, s.db, kindCollection, query)
	if err != nil {
		return Page[Collection]{}, err
	}
	return paginate(items, collectionName, collectionID, page), nil
}

func (s *SQLStore) SearchCategories(ctx context.Context, query string, page PageRequest) (Page[Category], error) {
	items, err := search[Category](ctx, s.db, kindCategory, query)
	if err != nil {
		return Page[Category]{}, err
	}
	return paginate(items, categoryName, categoryID, page), nil
}

func (s *SQLStore) UpdateProduct(ctx context.Context, id string, input ProductUpdateInput) ([]model.UserError, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: begin: %w", err)
	}
	defer tx.Rollback()

	var p Product
	if err := get(ctx, tx, kindProduct, id, &p); err != nil {
		return nil, err
	}
	updated, userErrs, err := applyProductUpdate(p, input, lookups{
		category: func(id string) (*Category, error) {
			var c Category
			err := get(ctx, tx, kindCategory, id, &c)
			if errors.Is(err, ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return &c, nil
		},
		collection: func(id string) (bool, error) {
			var c Collection
			err := get(ctx, tx, kindCollection, id, &c)
			if errors.Is(err, ErrNotFound) {
				return false, nil
			}
			return err == nil, err
		},
	})
	if err != nil || len(userErrs) > 0 {
		return userErrs, err
	}
	if err := put(ctx, tx, kindProduct, updated.ID, updated.Name, updated); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("catalog: commit: %w", err)
	}
	return nil, nil
}

func (s *SQLStore) UpdateCollection(ctx context.Context, id string, input CollectionUpdateInput) ([]model.UserError, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: begin: %w", err)
	}
	defer tx.Rollback()

	var c Collection
	if err := get(ctx, tx, kindCollection, id, &c); err != nil {
		return nil, err
	}
	updated, userErrs := applyCollectionUpdate(c, input)
	if len(userErrs) > 0 {
		return userErrs, nil
	}
	if err := put(ctx, tx, kindCollection, updated.ID, updated.Name, updated); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("catalog: commit: %w", err)
	}
	return nil, nil
}

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func put(ctx context.Context, db execQuerier, kind, id, name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("catalog: encode %s %q: %w", kind, id, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (kind, id, name, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT (kind, id) DO UPDATE SET name = excluded.name, body = excluded.body`,
		kind, id, name, string(body))
	if err != nil {
		return fmt.Errorf("catalog: write %s %q: %w", kind, id, err)
	}
	return nil
}

func get(ctx context.Context, db execQuerier, kind, id string, dest any) error {
	var body string
	err := db.QueryRowContext(ctx, `SELECT body FROM documents WHERE kind = ? AND id = ?`, kind, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	if err != nil {
		return fmt.Errorf("catalog: read %s %q: %w", kind, id, err)
	}
	if err := json.Unmarshal([]byte(body), dest); err != nil {
		return fmt.Errorf("catalog: decode %s %q: %w", kind, id, err)
	}
	return nil
}

func search[T any](ctx context.Context, db execQuerier, kind, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT body FROM documents WHERE kind = ? AND name LIKE '%' || ? || '%' ESCAPE '\' ORDER BY name, id`,
		kind, escapeLike(strings.TrimSpace(query)))
	if err != nil {
		return nil, fmt.Errorf("catalog: search %s: %w", kind, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("catalog: scan %s: %w", kind, err)
		}
		var item T
		if err := json.Unmarshal([]byte(body), &item); err != nil {
			return nil, fmt.Errorf("catalog: decode %s: %w", kind, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: search %s: %w", kind, err)
	}
	return out, nil
}

func escapeLike(s string) string {
	r := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(r)
}
