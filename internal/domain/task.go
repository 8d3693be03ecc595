package domain

import "strings"

// EventType names the catalog event that triggered a run.
type EventType string

const (
	EventCreated         EventType = "Created"
	EventUpdated         EventType = "Updated"
	EventItemCreated     EventType = "ItemCreated"
	EventItemUpdated     EventType = "ItemUpdated"
	EventFoodItemCreated EventType = "FoodItemCreated"
	EventFoodItemUpdated EventType = "FoodItemUpdated"
)

// Handled reports whether the pipeline processes this event type. Anything
// else is acknowledged without work.
func (t EventType) Handled() bool {
	switch t {
	case EventCreated, EventUpdated,
		EventItemCreated, EventItemUpdated,
		EventFoodItemCreated, EventFoodItemUpdated:
		return true
	default:
		return false
	}
}

// Metadata keys carried on catalog events.
const (
	MetaImageRequired    = "image_required"
	MetaIsManualCreation = "is_manual_creation"
	MetaIsSeedData       = "is_seed_data"
	MetaCreationSource   = "creation_source"
	MetaPreviousImage    = "previous_image_path"
)

// Task is the validated, immutable descriptor of one generation request.
// One pipeline run owns it exclusively.
type Task struct {
	EventType    EventType         `json:"event_type" validate:"required"`
	ItemID       string            `json:"item_id" validate:"required"`
	ItemName     string            `json:"item_name,omitempty"`
	Category     string            `json:"category,omitempty"`
	MaterialType string            `json:"material_type,omitempty"`
	Description  string            `json:"description,omitempty"`
	Attributes   []string          `json:"attribute_list"`
	Price        float64           `json:"price,omitempty"`
	Status       string            `json:"status,omitempty"`
	Metadata     map[string]string `json:"metadata"`
}

// DisplayName returns the item name, or a placeholder when the event had none.
func (t *Task) DisplayName() string {
	if name := strings.TrimSpace(t.ItemName); name != "" {
		return name
	}
	return "Unknown Food"
}

// Flag reads a string-valued boolean from the metadata. ok is false when the
// key is absent or blank.
func (t *Task) Flag(key string) (value bool, ok bool) {
	raw, found := t.Metadata[key]
	raw = strings.TrimSpace(raw)
	if !found || raw == "" {
		return false, false
	}
	return strings.EqualFold(raw, "true"), true
}

// CreationSource returns the metadata creation source or "unknown".
func (t *Task) CreationSource() string {
	if src := strings.TrimSpace(t.Metadata[MetaCreationSource]); src != "" {
		return src
	}
	return "unknown"
}
