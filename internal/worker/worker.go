package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"petfood/internal/pipeline"
)

// statusWriteTimeout bounds the status update after a run, which must land
// even when the run's context was cancelled by shutdown.
const statusWriteTimeout = 10 * time.Second

// Handler runs one envelope through the pipeline.
type Handler interface {
	HandleEvent(ctx context.Context, envelope map[string]any) pipeline.Response
}

// Options tune a Worker. Zero values fall back to defaults.
type Options struct {
	Concurrency  int
	PollInterval time.Duration
	MaxAttempts  int
	RetryDelay   time.Duration
	StaleAfter   time.Duration
	Logger       zerolog.Logger
}

// Worker claims events and runs them with bounded concurrency.
type Worker struct {
	queue   Queue
	handler Handler
	opts    Options
	now     func() time.Time
}

// New builds a Worker.
func New(queue Queue, handler Handler, opts Options) *Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Minute
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 15 * time.Minute
	}
	return &Worker{queue: queue, handler: handler, opts: opts, now: time.Now}
}

// Run polls until ctx is cancelled. Events left RUNNING by a crashed worker
// are returned to the queue at start and every StaleAfter.
func (w *Worker) Run(ctx context.Context) error {
	log := w.opts.Logger
	log.Info().Int("concurrency", w.opts.Concurrency).Msg("worker: started")

	w.resetStale(ctx)
	lastReset := w.now()

	for {
		n, err := w.Drain(ctx)
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("worker: failed to claim event")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if w.now().Sub(lastReset) >= w.opts.StaleAfter {
			w.resetStale(ctx)
			lastReset = w.now()
		}
		if n > 0 && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.opts.PollInterval):
		}
	}
}

// Drain claims and processes events until the queue is empty. At most
// Concurrency events run at once. It returns how many events were claimed.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	var g errgroup.Group
	g.SetLimit(w.opts.Concurrency)

	claimed := 0
	var claimErr error
	for ctx.Err() == nil {
		ev, err := w.queue.Claim(ctx)
		if errors.Is(err, ErrNoEvent) {
			break
		}
		if err != nil {
			claimErr = err
			break
		}
		claimed++
		g.Go(func() error {
			w.process(ctx, ev)
			return nil
		})
	}
	_ = g.Wait()
	return claimed, claimErr
}

func (w *Worker) process(ctx context.Context, ev Event) {
	log := w.opts.Logger.With().Str("event_id", ev.ID).Int("attempt", ev.Attempts).Logger()
	log.Info().Msg("worker: picked event")

	var envelope map[string]any
	if err := json.Unmarshal(ev.Envelope, &envelope); err != nil {
		log.Error().Err(err).Msg("worker: envelope is not valid json")
		w.complete(ctx, log, ev.ID, StatusFailed, nil, "decode envelope: "+err.Error())
		return
	}

	resp := w.handler.HandleEvent(ctx, envelope)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	result, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("worker: encode result failed")
	}

	body := resp.Body
	switch {
	case body.Success:
		w.complete(ctx, log, ev.ID, StatusSucceeded, result, "")
	case body.Retryable && ev.Attempts < w.opts.MaxAttempts:
		delay := w.opts.RetryDelay * time.Duration(max(ev.Attempts, 1))
		log.Warn().Dur("delay", delay).Str("stage", string(body.Stage)).Msg("worker: retryable failure, requeueing")
		if err := w.queue.Requeue(ctx, ev.ID, delay, failureText(body)); err != nil {
			log.Error().Err(err).Msg("worker: requeue failed")
		}
	default:
		log.Warn().Str("stage", string(body.Stage)).Str("message", body.Message).Msg("worker: event failed")
		w.complete(ctx, log, ev.ID, StatusFailed, result, failureText(body))
	}
}

func (w *Worker) complete(ctx context.Context, log zerolog.Logger, id string, status Status, result []byte, errMsg string) {
	if err := w.queue.Complete(ctx, id, status, result, errMsg); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("worker: update status failed")
	}
}

func (w *Worker) resetStale(ctx context.Context) {
	n, err := w.queue.ResetStale(ctx, w.opts.StaleAfter)
	if err != nil {
		w.opts.Logger.Error().Err(err).Msg("worker: reset stale events failed")
		return
	}
	if n > 0 {
		w.opts.Logger.Warn().Int64("count", n).Msg("worker: requeued stale events")
	}
}

func failureText(body pipeline.Body) string {
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
