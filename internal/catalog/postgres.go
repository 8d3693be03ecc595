package catalog

import (
	"context"
	"errors"
	"fmt"

	"petfood/internal/domain"
	"petfood/internal/infra"
	"petfood/internal/sqlinline"
)

// PostgresStore updates the foods table through a marker-checked executor.
type PostgresStore struct {
	db infra.SQLExecutor
}

// NewPostgresStore wraps db.
func NewPostgresStore(db infra.SQLExecutor) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("catalog: sql executor is required")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) UpdateItem(ctx context.Context, id string, fields map[string]any) (map[string]any, error) {
	image, updatedAt, err := imageFields(fields)
	if err != nil {
		return nil, err
	}
	var (
		gotImage string
		gotAt    int64
	)
	err = s.db.QueryRow(ctx, sqlinline.QCatalogUpdateFoodImage, id, image, updatedAt).Scan(&gotImage, &gotAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("catalog: update food %s: %w", id, err)
	}
	return map[string]any{FieldImage: gotImage, FieldUpdatedAt: gotAt}, nil
}

// Food is a catalog row as the SQL stores see it.
type Food struct {
	ID        string
	Name      string
	Image     string
	UpdatedAt int64
}

// GetFood reads one food row.
func (s *PostgresStore) GetFood(ctx context.Context, id string) (*Food, error) {
	var f Food
	err := s.db.QueryRow(ctx, sqlinline.QCatalogGetFood, id).Scan(&f.ID, &f.Name, &f.Image, &f.UpdatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("catalog: get food %s: %w", id, err)
	}
	return &f, nil
}

var _ Store = (*PostgresStore)(nil)
