package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"petfood/internal/domain"
)

// OpenSQLite opens the database at path in WAL mode.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}

// SQLiteStore keeps the catalog in a local SQLite file for development.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps db and ensures the schema exists.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the foods table when missing.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS foods (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		category    TEXT,
		food_type   TEXT,
		description TEXT,
		price       REAL,
		image       TEXT,
		updated_at  INTEGER
	)`)
	if err != nil {
		return fmt.Errorf("create foods table: %w", err)
	}
	return nil
}

// PutFood inserts or replaces a food row. Used to seed local catalogs.
func (s *SQLiteStore) PutFood(ctx context.Context, f Food) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO foods (id, name, image, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		f.ID, f.Name, nullString(f.Image), f.UpdatedAt)
	return err
}

// GetFood reads one food row.
func (s *SQLiteStore) GetFood(ctx context.Context, id string) (*Food, error) {
	var (
		f         Food
		image     sql.NullString
		updatedAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, image, updated_at FROM foods WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &image, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get food %s: %w", id, err)
	}
	f.Image, f.UpdatedAt = image.String, updatedAt.Int64
	return &f, nil
}

func (s *SQLiteStore) UpdateItem(ctx context.Context, id string, fields map[string]any) (map[string]any, error) {
	image, updatedAt, err := imageFields(fields)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE foods SET image = ?, updated_at = ? WHERE id = ?`, image, updatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("catalog: update food %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("catalog: rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
	}
	return map[string]any{FieldImage: image, FieldUpdatedAt: updatedAt}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Store = (*SQLiteStore)(nil)
