// Package catalog writes artifact references back onto catalog records.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"petfood/internal/domain"
)

// Field names written by the updater.
const (
	FieldImage     = "image"
	FieldUpdatedAt = "updated_at"
)

// Store applies a partial update to an existing record and returns the
// updated attributes. A missing record yields domain.ErrNotFound; the store
// never creates one.
type Store interface {
	UpdateItem(ctx context.Context, id string, fields map[string]any) (map[string]any, error)
}

// UpdateResult is the outcome of Updater.Update.
type UpdateResult struct {
	Updated    bool
	Attributes map[string]any
	Err        error
}

// Updater records a stored artifact key on the catalog item.
type Updater struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures an Updater.
type Option func(*Updater)

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option { return func(u *Updater) { u.now = now } }

// WithLogger sets the updater logger.
func WithLogger(l zerolog.Logger) Option { return func(u *Updater) { u.logger = l } }

// NewUpdater wraps store.
func NewUpdater(store Store, opts ...Option) *Updater {
	u := &Updater{store: store, now: time.Now, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Update sets image=key and updated_at=now on itemID. Errors wrap
// domain.ErrCatalog; a missing item also matches domain.ErrNotFound.
func (u *Updater) Update(ctx context.Context, itemID, key string) UpdateResult {
	log := u.logger.With().Str("item_id", itemID).Str("key", key).Logger()

	attrs, err := u.store.UpdateItem(ctx, itemID, map[string]any{
		FieldImage:     key,
		FieldUpdatedAt: u.now().Unix(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Msg("catalog: item does not exist")
		} else {
			log.Error().Err(err).Msg("catalog: update failed")
		}
		return UpdateResult{Err: fmt.Errorf("%w: %w", domain.ErrCatalog, err)}
	}
	log.Info().Msg("catalog: item updated")
	return UpdateResult{Updated: true, Attributes: attrs}
}

// imageFields extracts the two fields the SQL stores know how to write.
func imageFields(fields map[string]any) (string, int64, error) {
	for name := range fields {
		if name != FieldImage && name != FieldUpdatedAt {
			return "", 0, fmt.Errorf("catalog: unsupported field %q", name)
		}
	}
	image, ok := fields[FieldImage].(string)
	if !ok {
		return "", 0, fmt.Errorf("catalog: field %q must be a string", FieldImage)
	}
	var updatedAt int64
	switch v := fields[FieldUpdatedAt].(type) {
	case int64:
		updatedAt = v
	case int:
		updatedAt = int64(v)
	case nil:
		updatedAt = time.Now().Unix()
	default:
		return "", 0, fmt.Errorf("catalog: field %q must be unix seconds", FieldUpdatedAt)
	}
	return image, updatedAt, nil
}
