package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// PostEvent accepts a catalog event envelope. By default the pipeline runs
// inline and its response is returned as is; with ?async=true the envelope
// is queued for the worker instead.
func (a *App) PostEvent(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	var envelope map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, a.MaxBodyBytes))
	if err := dec.Decode(&envelope); err != nil {
		log.Warn().Err(err).Msg("events: undecodable body")
		a.fail(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if envelope == nil {
		a.fail(w, http.StatusBadRequest, "event body must be a JSON object")
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		a.enqueue(w, r, envelope)
		return
	}

	resp := a.Pipeline.HandleEvent(r.Context(), envelope)
	a.json(w, resp.StatusCode, resp.Body)
}

func (a *App) enqueue(w http.ResponseWriter, r *http.Request, envelope map[string]any) {
	if a.Queue == nil {
		a.fail(w, http.StatusServiceUnavailable, "event queue is not configured")
		return
	}
	id, err := a.Queue.Enqueue(r.Context(), envelope)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("events: enqueue failed")
		a.fail(w, http.StatusInternalServerError, "failed to queue event")
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{
		"success":  true,
		"event_id": id,
		"status":   "PENDING",
	})
}
