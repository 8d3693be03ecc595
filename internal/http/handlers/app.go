package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"petfood/internal/pipeline"
)

// Pipeline runs one event envelope synchronously.
type Pipeline interface {
	HandleEvent(ctx context.Context, envelope map[string]any) pipeline.Response
}

// Queue accepts envelopes for the background worker.
type Queue interface {
	Enqueue(ctx context.Context, envelope map[string]any) (string, error)
}

// App holds what the HTTP handlers need. Queue may be nil when no outbox is
// configured.
type App struct {
	Pipeline     Pipeline
	Queue        Queue
	Logger       zerolog.Logger
	MaxBodyBytes int64
}

func NewApp(p Pipeline, q Queue, logger zerolog.Logger) *App {
	return &App{Pipeline: p, Queue: q, Logger: logger, MaxBodyBytes: 1 << 20}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) fail(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]any{"success": false, "message": msg})
}
