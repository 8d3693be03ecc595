package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfood/internal/domain"
)

type memoryStore struct {
	items map[string]map[string]any
	err   error
}

func (m *memoryStore) UpdateItem(_ context.Context, id string, fields map[string]any) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
	}
	for k, v := range fields {
		item[k] = v
	}
	return fields, nil
}

func TestUpdaterUpdate(t *testing.T) {
	store := &memoryStore{items: map[string]map[string]any{"f-1": {"name": "Beef Kibble"}}}
	u := NewUpdater(store, WithClock(func() time.Time { return time.Unix(1700000000, 0) }))

	res := u.Update(context.Background(), "f-1", "petfood/beef-kibble.jpg")
	require.NoError(t, res.Err)
	assert.True(t, res.Updated)
	assert.Equal(t, "petfood/beef-kibble.jpg", store.items["f-1"]["image"])
	assert.Equal(t, int64(1700000000), store.items["f-1"]["updated_at"])
	assert.Equal(t, "Beef Kibble", store.items["f-1"]["name"])
}

func TestUpdaterMissingItem(t *testing.T) {
	store := &memoryStore{items: map[string]map[string]any{}}
	res := NewUpdater(store).Update(context.Background(), "nope", "petfood/x.jpg")

	assert.False(t, res.Updated)
	assert.True(t, errors.Is(res.Err, domain.ErrNotFound))
	assert.True(t, errors.Is(res.Err, domain.ErrCatalog))
	assert.Empty(t, store.items)
}

func TestUpdaterStoreFailure(t *testing.T) {
	boom := errors.New("throttled")
	res := NewUpdater(&memoryStore{err: boom}).Update(context.Background(), "f-1", "petfood/x.jpg")

	assert.True(t, errors.Is(res.Err, domain.ErrCatalog))
	assert.True(t, errors.Is(res.Err, boom))
	assert.False(t, errors.Is(res.Err, domain.ErrNotFound))
}

func TestImageFields(t *testing.T) {
	image, at, err := imageFields(map[string]any{"image": "k", "updated_at": int64(5)})
	require.NoError(t, err)
	assert.Equal(t, "k", image)
	assert.Equal(t, int64(5), at)

	_, _, err = imageFields(map[string]any{"image": "k", "status": "x"})
	assert.Error(t, err)
	_, _, err = imageFields(map[string]any{"image": 3})
	assert.Error(t, err)
	_, _, err = imageFields(map[string]any{"image": "k", "updated_at": "yesterday"})
	assert.Error(t, err)
}
