// Package storage persists generated artifacts under deterministic keys.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"petfood/internal/domain"
)

const (
	// KeyPrefix is the folder every artifact lives under.
	KeyPrefix = "petfood/"
	// ContentType is recorded on every stored artifact.
	ContentType = "image/jpeg"
	// DefaultGeneratedBy tags objects written by the pipeline.
	DefaultGeneratedBy = "petfood-pipeline"
)

// ObjectWriter stores a blob under key, overwriting what was there.
type ObjectWriter interface {
	Put(ctx context.Context, key string, data []byte, contentType string, meta map[string]string) error
}

// StorageKey derives the artifact key from an item name. Names that differ
// only in case or whitespace map to the same key. "&" becomes "and" in place,
// so "Salmon&Tuna" and "Salmon & Tuna" keep distinct keys.
func StorageKey(itemName string) string {
	name := cases.Lower(language.Und).String(strings.TrimSpace(itemName))
	name = strings.ReplaceAll(name, "&", "and")
	name = strings.Join(strings.Fields(name), "-")
	name = strings.ReplaceAll(name, "/", "-")
	if name == "" {
		name = "unknown-food"
	}
	return KeyPrefix + name + ".jpg"
}

// StoreResult is the outcome of ArtifactStore.Store.
type StoreResult struct {
	Ref      *domain.ArtifactRef
	Attempts int
	Err      error
}

// ArtifactStore decodes generated payloads and writes them through an
// ObjectWriter.
type ArtifactStore struct {
	writer      ObjectWriter
	generatedBy string
	now         func() time.Time
	logger      zerolog.Logger
}

// ArtifactOption configures an ArtifactStore.
type ArtifactOption func(*ArtifactStore)

// WithGeneratedBy sets the generated_by metadata value.
func WithGeneratedBy(name string) ArtifactOption {
	return func(s *ArtifactStore) {
		if name = strings.TrimSpace(name); name != "" {
			s.generatedBy = name
		}
	}
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) ArtifactOption {
	return func(s *ArtifactStore) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) ArtifactOption {
	return func(s *ArtifactStore) { s.logger = l }
}

// NewArtifactStore wraps writer.
func NewArtifactStore(writer ObjectWriter, opts ...ArtifactOption) *ArtifactStore {
	s := &ArtifactStore{
		writer:      writer,
		generatedBy: DefaultGeneratedBy,
		now:         time.Now,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store decodes the base64 payload and writes it under StorageKey(itemName).
// Errors wrap domain.ErrStorage.
func (s *ArtifactStore) Store(ctx context.Context, payload, itemID, itemName string) StoreResult {
	key := StorageKey(itemName)
	log := s.logger.With().Str("item_id", itemID).Str("key", key).Logger()

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		log.Error().Err(err).Msg("storage: payload is not valid base64")
		return StoreResult{Err: fmt.Errorf("%w: decode payload: %v", domain.ErrStorage, err)}
	}
	if len(data) == 0 {
		return StoreResult{Err: fmt.Errorf("%w: empty payload", domain.ErrStorage)}
	}

	meta := map[string]string{
		"food_id":      itemID,
		"generated_by": s.generatedBy,
		"timestamp":    strconv.FormatInt(s.now().Unix(), 10),
	}
	if err := s.writer.Put(ctx, key, data, ContentType, meta); err != nil {
		log.Error().Err(err).Msg("storage: put failed")
		return StoreResult{Attempts: 1, Err: fmt.Errorf("%w: %w", domain.ErrStorage, err)}
	}

	log.Info().Int("size", len(data)).Msg("storage: artifact stored")
	return StoreResult{
		Ref: &domain.ArtifactRef{
			StorageKey:  key,
			SizeBytes:   int64(len(data)),
			ContentType: ContentType,
		},
		Attempts: 1,
	}
}
