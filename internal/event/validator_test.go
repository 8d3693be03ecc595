package event

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfood/internal/domain"
)

func newTestValidator() *Validator {
	return NewValidator(zerolog.Nop())
}

func TestValidateRejectsIncompleteEnvelopes(t *testing.T) {
	tests := []struct {
		name     string
		envelope map[string]any
		field    string
		message  string
	}{
		{
			name:     "missing detail",
			envelope: map[string]any{"source": "catalog"},
			message:  "missing 'detail' section in event",
		},
		{
			name:     "empty detail",
			envelope: map[string]any{"detail": map[string]any{}},
			message:  "missing 'detail' section in event",
		},
		{
			name: "missing event type",
			envelope: map[string]any{"detail": map[string]any{
				"item_id": "f-1", "description": "tasty",
			}},
			field:   "event_type",
			message: "missing 'event_type' in event detail",
		},
		{
			name: "missing item id",
			envelope: map[string]any{"detail": map[string]any{
				"event_type": "Created", "description": "tasty",
			}},
			field:   "item_id",
			message: "missing 'item_id' in event detail",
		},
		{
			name: "handled type without description",
			envelope: map[string]any{"detail": map[string]any{
				"event_type": "ItemCreated", "item_id": "f-1",
			}},
			field:   "description",
			message: "missing 'description' in event detail",
		},
	}

	v := newTestValidator()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task, err := v.Validate(tc.envelope)
			require.Error(t, err)
			assert.Nil(t, task)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			assert.True(t, strings.HasPrefix(err.Error(), tc.message), err.Error())

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidateAcceptsAliases(t *testing.T) {
	v := newTestValidator()
	task, err := v.Validate(map[string]any{"detail": map[string]any{
		"event_type":  "FoodItemCreated",
		"food_id":     "f-9",
		"food_name":   "Salmon Bites",
		"pet_type":    "kitten",
		"food_type":   "treats",
		"description": "crunchy salmon treats",
		"ingredients": []any{"salmon", " ", "peas"},
		"price":       "12.5",
		"metadata": map[string]any{
			"image_required": true,
			"retries":        float64(2),
			"ignored":        nil,
		},
	}})
	require.NoError(t, err)

	assert.Equal(t, domain.EventFoodItemCreated, task.EventType)
	assert.Equal(t, "f-9", task.ItemID)
	assert.Equal(t, "Salmon Bites", task.ItemName)
	assert.Equal(t, "kitten", task.Category)
	assert.Equal(t, "treats", task.MaterialType)
	assert.Equal(t, []string{"salmon", "peas"}, task.Attributes)
	assert.InDelta(t, 12.5, task.Price, 0.0001)
	assert.Equal(t, map[string]string{"image_required": "true", "retries": "2"}, task.Metadata)
}

func TestValidateUnhandledTypeNeedsNoDescription(t *testing.T) {
	v := newTestValidator()
	task, err := v.Validate(map[string]any{"detail": map[string]any{
		"event_type": "ItemDeleted",
		"item_id":    "f-2",
	}})
	require.NoError(t, err)
	assert.False(t, task.EventType.Handled())
	assert.Empty(t, task.Attributes)
	assert.NotNil(t, task.Metadata)
}

func TestParseEnvelope(t *testing.T) {
	v := newTestValidator()

	task, err := v.ParseEnvelope([]byte(`{"detail":{"event_type":"Created","item_id":"f-3","item_name":"Beef Kibble","description":"hearty","attribute_list":["beef"]}}`))
	require.NoError(t, err)
	assert.Equal(t, "Beef Kibble", task.DisplayName())
	assert.Equal(t, []string{"beef"}, task.Attributes)

	_, err = v.ParseEnvelope([]byte(`{not json`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestReadEnvelope(t *testing.T) {
	envelope, err := ReadEnvelope(strings.NewReader(`{"detail":{"item_id":"x"}}`))
	require.NoError(t, err)
	assert.Contains(t, envelope, "detail")

	_, err = ReadEnvelope(strings.NewReader(`[`))
	require.Error(t, err)
}
