// Package event turns inbound catalog event envelopes into validated task
// descriptors.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"petfood/internal/domain"
)

// Validator extracts the "detail" section of an envelope and checks the
// fields the pipeline depends on.
type Validator struct {
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewValidator builds a Validator. Field errors are reported with the JSON
// names used on the wire.
func NewValidator(logger zerolog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v, logger: logger}
}

// ParseEnvelope decodes a raw JSON envelope and validates it.
func (v *Validator) ParseEnvelope(raw []byte) (*domain.Task, error) {
	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("decode event envelope: %v", err)}
	}
	return v.Validate(envelope)
}

// Validate converts an envelope into a Task. Missing detail, event type or item
// id always fail; a missing description fails only for event types the
// pipeline handles, because it seeds prompt generation.
func (v *Validator) Validate(envelope map[string]any) (*domain.Task, error) {
	detail, ok := envelope["detail"].(map[string]any)
	if !ok || len(detail) == 0 {
		return nil, &domain.ValidationError{Reason: "missing 'detail' section in event"}
	}

	task := &domain.Task{
		EventType:    domain.EventType(stringField(detail, "event_type")),
		ItemID:       stringField(detail, "item_id", "food_id"),
		ItemName:     stringField(detail, "item_name", "food_name"),
		Category:     stringField(detail, "category", "pet_type"),
		MaterialType: stringField(detail, "material_type", "food_type"),
		Description:  stringField(detail, "description"),
		Attributes:   listField(detail, "attribute_list", "ingredients"),
		Price:        numberField(detail, "price"),
		Status:       stringField(detail, "status"),
		Metadata:     mapField(detail, "metadata"),
	}

	if err := v.validate.Struct(task); err != nil {
		return nil, translate(err)
	}
	if task.EventType.Handled() && strings.TrimSpace(task.Description) == "" {
		return nil, &domain.ValidationError{Field: "description", Reason: "missing 'description' in event detail, it is used to generate the prompt"}
	}

	v.logger.Info().
		Str("event_type", string(task.EventType)).
		Str("item_id", task.ItemID).
		Str("item_name", task.ItemName).
		Str("category", task.Category).
		Str("material_type", task.MaterialType).
		Strs("attributes", task.Attributes).
		Interface("metadata", task.Metadata).
		Msg("event: extracted fields")

	return task, nil
}

func translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.ValidationError{
			Field:  fe.Field(),
			Reason: fmt.Sprintf("missing '%s' in event detail", fe.Field()),
		}
	}
	return &domain.ValidationError{Reason: err.Error()}
}

func stringField(detail map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := detail[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func listField(detail map[string]any, keys ...string) []string {
	out := []string{}
	for _, key := range keys {
		items, ok := detail[key].([]any)
		if !ok {
			if typed, ok := detail[key].([]string); ok {
				items = make([]any, len(typed))
				for i, s := range typed {
					items[i] = s
				}
			} else {
				continue
			}
		}
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}

func numberField(detail map[string]any, key string) float64 {
	switch v := detail[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func mapField(detail map[string]any, key string) map[string]string {
	out := map[string]string{}
	switch m := detail[key].(type) {
	case map[string]any:
		for k, v := range m {
			if v == nil {
				continue
			}
			out[k] = fmt.Sprint(v)
		}
	case map[string]string:
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// ReadEnvelope decodes one JSON envelope from r.
func ReadEnvelope(r io.Reader) (map[string]any, error) {
	var envelope map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	return envelope, nil
}
