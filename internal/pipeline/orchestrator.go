// Package pipeline runs one catalog event through prompt, generation,
// storage and catalog update.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petfood/internal/catalog"
	"petfood/internal/domain"
	"petfood/internal/event"
	"petfood/internal/generation"
	"petfood/internal/prompt"
	"petfood/internal/storage"
)

// Generator produces an image payload for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, itemID string) generation.Outcome
}

// ArtifactStore persists a generated payload.
type ArtifactStore interface {
	Store(ctx context.Context, payload, itemID, itemName string) storage.StoreResult
}

// CatalogUpdater records the stored key on the catalog item.
type CatalogUpdater interface {
	Update(ctx context.Context, itemID, key string) catalog.UpdateResult
}

// Gate decides whether a task needs an image at all.
type Gate struct {
	// Flag is the metadata key consulted; defaults to image_required.
	Flag string
	// DefaultRequired applies when the flag is absent.
	DefaultRequired bool
}

// DefaultGate requires an image unless image_required is "false".
func DefaultGate() Gate {
	return Gate{Flag: domain.MetaImageRequired, DefaultRequired: true}
}

// Required reports whether the task passes the gate. Only a "false" flag
// value (any case) skips.
func (g Gate) Required(task *domain.Task) bool {
	flag := g.Flag
	if flag == "" {
		flag = domain.MetaImageRequired
	}
	raw, ok := task.Metadata[flag]
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return g.DefaultRequired
	}
	return !strings.EqualFold(raw, "false")
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Validator *event.Validator
	Prompts   prompt.Source
	Generator Generator
	Artifacts ArtifactStore
	Catalog   CatalogUpdater
	Gate      Gate
	Logger    zerolog.Logger
}

// Orchestrator sequences the stages of one run. It holds no per-run state,
// so concurrent runs may share it.
type Orchestrator struct {
	validator *event.Validator
	prompts   prompt.Source
	generator Generator
	artifacts ArtifactStore
	catalog   CatalogUpdater
	gate      Gate
	logger    zerolog.Logger
}

// New checks deps and builds an Orchestrator.
func New(deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Validator == nil:
		return nil, errors.New("pipeline: validator is required")
	case deps.Prompts == nil:
		return nil, errors.New("pipeline: prompt source is required")
	case deps.Generator == nil:
		return nil, errors.New("pipeline: generator is required")
	case deps.Artifacts == nil:
		return nil, errors.New("pipeline: artifact store is required")
	case deps.Catalog == nil:
		return nil, errors.New("pipeline: catalog updater is required")
	}
	return &Orchestrator{
		validator: deps.Validator,
		prompts:   deps.Prompts,
		generator: deps.Generator,
		artifacts: deps.Artifacts,
		catalog:   deps.Catalog,
		gate:      deps.Gate,
		logger:    deps.Logger,
	}, nil
}

// Run processes a validated task. Every failure is reported in the result
// with the stage it happened in; Run itself never panics.
func (o *Orchestrator) Run(ctx context.Context, task *domain.Task) (res domain.Result) {
	name := task.DisplayName()
	res = domain.Result{
		ItemID:         task.ItemID,
		ItemName:       name,
		Stage:          domain.StageGate,
		CreationSource: task.CreationSource(),
	}
	log := o.logger.With().Str("item_id", task.ItemID).Str("event_type", string(task.EventType)).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stage", string(res.Stage)).Msg("pipeline: run panicked")
			res.Success = false
			res.Err = &domain.StageError{Stage: res.Stage, Err: fmt.Errorf("panic: %v", r)}
			res.Message = "Failed to process food event for " + name
		}
	}()

	log.Info().Str("item_name", name).Str("creation_source", res.CreationSource).Msg("pipeline: run started")

	if !o.gate.Required(task) {
		log.Info().Msg("pipeline: image not required, skipping")
		res.Success = true
		res.Skipped = true
		res.Message = "Image generation not required for " + name
		return res
	}

	res.Stage = domain.StagePrompt
	p := o.prompts.Resolve(task)
	res.PromptType = string(p.Kind)
	log.Debug().Str("prompt_type", res.PromptType).Str("prompt", p.Text).Msg("pipeline: prompt ready")

	res.Stage = domain.StageGenerate
	gen := o.generator.Generate(ctx, p.Text, task.ItemID)
	res.Attempts.Generation = gen.Attempts
	if !gen.Success {
		res.Retryable = gen.Retryable
		return o.fail(log, res, gen.Err, "Failed to generate image for "+name)
	}

	res.Stage = domain.StageStore
	stored := o.artifacts.Store(ctx, gen.Payload, task.ItemID, name)
	res.Attempts.Storage = stored.Attempts
	if stored.Err != nil {
		return o.fail(log, res, stored.Err, "Failed to store image for "+name)
	}
	res.Artifact = stored.Ref

	res.Stage = domain.StageCatalog
	if up := o.catalog.Update(ctx, task.ItemID, stored.Ref.StorageKey); up.Err != nil {
		return o.fail(log, res, up.Err, "Failed to update database for "+name)
	}

	res.Stage = domain.StageDone
	res.Success = true
	res.Message = "Successfully processed food event for " + name
	log.Info().Str("key", stored.Ref.StorageKey).Msg("pipeline: run succeeded")
	return res
}

func (o *Orchestrator) fail(log zerolog.Logger, res domain.Result, err error, msg string) domain.Result {
	if err == nil {
		err = errors.New("unknown failure")
	}
	res.Success = false
	res.Err = &domain.StageError{Stage: res.Stage, Err: err}
	res.Message = msg
	log.Error().Err(err).Str("stage", string(res.Stage)).Bool("retryable", res.Retryable).Msg("pipeline: run failed")
	return res
}

// HandleEvent is the invoking boundary: it validates the envelope, runs the
// pipeline for handled event types and always returns a well-formed response.
func (o *Orchestrator) HandleEvent(ctx context.Context, envelope map[string]any) (resp Response) {
	runID := uuid.NewString()
	log := o.logger.With().Str("run_id", runID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("pipeline: event handling panicked")
			resp = Response{
				StatusCode: http.StatusInternalServerError,
				Body: Body{
					RunID:   runID,
					Message: fmt.Sprintf("Error processing event: %v", r),
					Error:   fmt.Sprint(r),
				},
			}
		}
	}()

	task, err := o.validator.Validate(envelope)
	if err != nil {
		log.Warn().Err(err).Msg("pipeline: invalid event")
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body: Body{
				RunID:   runID,
				Stage:   domain.StageValidate,
				Message: "Error processing event: " + err.Error(),
				Error:   err.Error(),
			},
		}
	}

	if !task.EventType.Handled() {
		log.Warn().Str("event_type", string(task.EventType)).Msg("pipeline: event type not handled")
		return Response{
			StatusCode: http.StatusOK,
			Body: Body{
				RunID:   runID,
				ItemID:  task.ItemID,
				Success: true,
				Message: fmt.Sprintf("Event type %s not handled by image generator", task.EventType),
			},
		}
	}

	res := o.Run(log.WithContext(ctx), task)
	body := NewBody(res)
	body.RunID = runID
	return Response{StatusCode: http.StatusOK, Body: body}
}
