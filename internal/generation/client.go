package generation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// AttemptOutcome classifies a single backend call.
type AttemptOutcome string

const (
	OutcomeSuccess   AttemptOutcome = "success"
	OutcomeRetryable AttemptOutcome = "retryable_failure"
	OutcomeTerminal  AttemptOutcome = "terminal_failure"
)

// Attempt records one backend call.
type Attempt struct {
	Number    int
	StartedAt time.Time
	Outcome   AttemptOutcome
	Err       error
	// Delay is the backoff waited after this attempt, zero when none.
	Delay time.Duration
}

// Outcome is the result of Generate. Payload holds the base64 image exactly
// as the backend returned it.
type Outcome struct {
	Payload   string
	Success   bool
	Attempts  int
	Retryable bool
	Err       error
	History   []Attempt
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client drives a Backend through the retry policy.
type Client struct {
	backend Backend
	policy  Policy
	codes   map[string]struct{}
	sleep   SleepFunc
	uniform func() float64
	seed    func() int
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSleep replaces the wait between attempts.
func WithSleep(fn SleepFunc) Option { return func(c *Client) { c.sleep = fn } }

// WithRandom replaces the uniform [0,1) source used for jitter.
func WithRandom(fn func() float64) Option { return func(c *Client) { c.uniform = fn } }

// WithSeed replaces the per-attempt seed source.
func WithSeed(fn func() int) Option { return func(c *Client) { c.seed = fn } }

// WithClock replaces the attempt timestamp source.
func WithClock(fn func() time.Time) Option { return func(c *Client) { c.now = fn } }

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient returns a client for backend.
func NewClient(backend Backend, policy Policy, opts ...Option) *Client {
	c := &Client{
		backend: backend,
		policy:  policy,
		codes:   policy.codeSet(),
		sleep:   sleepContext,
		uniform: rand.Float64,
		seed:    func() int { return rand.IntN(1_000_001) },
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type state int

const (
	stateStagger state = iota
	stateAttempt
	stateBackoff
	stateSuccess
	stateTerminal
	stateExhausted
)

// Generate requests one image for prompt. It makes at most MaxRetries+1
// attempts; a non-retryable failure or a cancelled context stops the loop
// at once.
func (c *Client) Generate(ctx context.Context, prompt, itemID string) Outcome {
	log := c.logger.With().Str("item_id", itemID).Logger()

	var (
		out     Outcome
		lastErr error
		st      = stateStagger
	)
	for {
		switch st {
		case stateStagger:
			if err := c.sleep(ctx, c.policy.InitialDelay(c.uniform())); err != nil {
				lastErr = err
				st = stateTerminal
				continue
			}
			st = stateAttempt

		case stateAttempt:
			rec := Attempt{Number: out.Attempts + 1, StartedAt: c.now()}
			payload, err := c.invoke(ctx, prompt)
			out.Attempts++
			if err == nil {
				rec.Outcome = OutcomeSuccess
				out.History = append(out.History, rec)
				out.Payload = payload
				st = stateSuccess
				continue
			}

			lastErr = err
			rec.Err = err
			retryable := ctx.Err() == nil && classify(err, c.codes)
			switch {
			case !retryable:
				rec.Outcome = OutcomeTerminal
				st = stateTerminal
			case out.Attempts > c.policy.MaxRetries:
				rec.Outcome = OutcomeRetryable
				st = stateExhausted
			default:
				rec.Outcome = OutcomeRetryable
				st = stateBackoff
			}
			out.History = append(out.History, rec)
			log.Warn().Err(err).Int("attempt", rec.Number).Str("outcome", string(rec.Outcome)).Msg("generation: attempt failed")

		case stateBackoff:
			jitter := (c.uniform()*2 - 1) * c.policy.JitterFraction
			delay := c.policy.Delay(out.Attempts-1, jitter)
			out.History[len(out.History)-1].Delay = delay
			log.Info().Int("attempt", out.Attempts).Dur("delay", delay).Msg("generation: backing off")
			if err := c.sleep(ctx, delay); err != nil {
				lastErr = fmt.Errorf("backoff interrupted: %w (last error: %v)", err, lastErr)
				st = stateTerminal
				continue
			}
			st = stateAttempt

		case stateSuccess:
			out.Success = true
			log.Info().Int("attempts", out.Attempts).Msg("generation: image generated")
			return out

		case stateTerminal:
			out.Err = fmt.Errorf("%w: %w", ErrTerminal, lastErr)
			log.Error().Err(out.Err).Int("attempts", out.Attempts).Msg("generation: giving up")
			return out

		case stateExhausted:
			out.Retryable = true
			out.Err = fmt.Errorf("%w after %d attempts: %w", ErrRetryable, out.Attempts, lastErr)
			log.Error().Err(out.Err).Int("attempts", out.Attempts).Msg("generation: retries exhausted")
			return out
		}
	}
}

func (c *Client) invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := c.backend.Invoke(ctx, NewRequest(prompt, c.seed()))
	if err != nil {
		return "", err
	}
	if resp != nil {
		for _, img := range resp.Images {
			if strings.TrimSpace(img) != "" {
				return img, nil
			}
		}
		if resp.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrNoArtifact, resp.Error)
		}
	}
	return "", ErrNoArtifact
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
