package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedBackend struct {
	responses []func() (*Response, error)
	calls     int
	seeds     []int
}

func (b *scriptedBackend) Invoke(_ context.Context, req *Request) (*Response, error) {
	b.seeds = append(b.seeds, req.ImageGenerationConfig.Seed)
	i := b.calls
	b.calls++
	if i >= len(b.responses) {
		i = len(b.responses) - 1
	}
	return b.responses[i]()
}

func fail(err error) func() (*Response, error) {
	return func() (*Response, error) { return nil, err }
}

func succeed(img string) func() (*Response, error) {
	return func() (*Response, error) { return &Response{Images: []string{img}}, nil }
}

type recordedSleep struct {
	waits []time.Duration
	err   error
}

func (s *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}

func newTestClient(b Backend, s *recordedSleep) *Client {
	return NewClient(b, DefaultPolicy(),
		WithSleep(s.sleep),
		WithRandom(func() float64 { return 0.5 }),
		WithSeed(func() int { return 42 }),
	)
}

func TestGenerateSucceedsFirstTry(t *testing.T) {
	backend := &scriptedBackend{responses: []func() (*Response, error){succeed("aW1n")}}
	sleeps := &recordedSleep{}

	out := newTestClient(backend, sleeps).Generate(context.Background(), "a bowl", "f-1")

	require.True(t, out.Success)
	assert.NoError(t, out.Err)
	assert.Equal(t, "aW1n", out.Payload)
	assert.Equal(t, 1, out.Attempts)
	require.Len(t, out.History, 1)
	assert.Equal(t, OutcomeSuccess, out.History[0].Outcome)
	assert.Equal(t, []int{42}, backend.seeds)
	// only the initial stagger
	require.Len(t, sleeps.waits, 1)
	assert.Equal(t, 1050*time.Millisecond, sleeps.waits[0])
}

func TestGenerateExhaustsRetryBudget(t *testing.T) {
	throttled := &BackendError{Code: "ThrottlingException", Message: "slow down", StatusCode: 429}
	backend := &scriptedBackend{responses: []func() (*Response, error){fail(throttled)}}
	sleeps := &recordedSleep{}

	out := newTestClient(backend, sleeps).Generate(context.Background(), "a bowl", "f-1")

	assert.False(t, out.Success)
	assert.True(t, out.Retryable)
	assert.Equal(t, 6, out.Attempts)
	assert.Equal(t, 6, backend.calls)
	assert.True(t, errors.Is(out.Err, ErrRetryable))
	var be *BackendError
	require.True(t, errors.As(out.Err, &be))
	assert.Equal(t, "ThrottlingException", be.Code)

	// stagger plus five backoffs, doubling from one second
	want := []time.Duration{
		1050 * time.Millisecond,
		1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
	}
	assert.Equal(t, want, sleeps.waits)
	for _, a := range out.History {
		assert.Equal(t, OutcomeRetryable, a.Outcome)
	}
}

func TestGenerateStopsOnTerminalError(t *testing.T) {
	backend := &scriptedBackend{responses: []func() (*Response, error){
		fail(&BackendError{Code: "ValidationException", Message: "bad prompt", StatusCode: 400}),
	}}
	sleeps := &recordedSleep{}

	out := newTestClient(backend, sleeps).Generate(context.Background(), "a bowl", "f-1")

	assert.False(t, out.Success)
	assert.False(t, out.Retryable)
	assert.Equal(t, 1, out.Attempts)
	assert.True(t, errors.Is(out.Err, ErrTerminal))
	require.Len(t, out.History, 1)
	assert.Equal(t, OutcomeTerminal, out.History[0].Outcome)
}

func TestGenerateNoImagesIsTerminal(t *testing.T) {
	backend := &scriptedBackend{responses: []func() (*Response, error){
		func() (*Response, error) { return &Response{Images: []string{""}}, nil },
	}}

	out := newTestClient(backend, &recordedSleep{}).Generate(context.Background(), "a bowl", "f-1")

	assert.Equal(t, 1, out.Attempts)
	assert.False(t, out.Retryable)
	assert.True(t, errors.Is(out.Err, ErrNoArtifact))
	assert.True(t, errors.Is(out.Err, ErrTerminal))
}

func TestGenerateRecoversAfterTransientErrors(t *testing.T) {
	backend := &scriptedBackend{responses: []func() (*Response, error){
		fail(errors.New("read tcp: connection reset by peer")),
		fail(&BackendError{Code: "ModelNotReadyException"}),
		succeed("b2s="),
	}}
	sleeps := &recordedSleep{}

	out := newTestClient(backend, sleeps).Generate(context.Background(), "a bowl", "f-1")

	require.True(t, out.Success)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, "b2s=", out.Payload)
	assert.Equal(t, time.Second, out.History[0].Delay)
	assert.Equal(t, 2*time.Second, out.History[1].Delay)
	assert.Zero(t, out.History[2].Delay)
}

func TestGenerateUncodedErrorWithoutHintIsTerminal(t *testing.T) {
	backend := &scriptedBackend{responses: []func() (*Response, error){fail(errors.New("access denied"))}}

	out := newTestClient(backend, &recordedSleep{}).Generate(context.Background(), "a bowl", "f-1")

	assert.Equal(t, 1, out.Attempts)
	assert.True(t, errors.Is(out.Err, ErrTerminal))
}

func TestGenerateCancelledDuringBackoff(t *testing.T) {
	backend := &scriptedBackend{responses: []func() (*Response, error){
		fail(&BackendError{Code: "ServiceUnavailableException"}),
	}}
	sleeps := &recordedSleep{}
	c := newTestClient(backend, sleeps)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps.waits = append(sleeps.waits, d)
		if len(sleeps.waits) > 1 {
			return context.Canceled
		}
		return nil
	}

	out := c.Generate(context.Background(), "a bowl", "f-1")

	assert.Equal(t, 1, out.Attempts)
	assert.False(t, out.Retryable)
	assert.True(t, errors.Is(out.Err, ErrTerminal))
	assert.True(t, errors.Is(out.Err, context.Canceled))
}

func TestGenerateWithRealSleepHonoursContext(t *testing.T) {
	backend := &scriptedBackend{responses: []func() (*Response, error){succeed("eA==")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewClient(backend, DefaultPolicy()).Generate(ctx, "a bowl", "f-1")

	assert.Equal(t, 0, out.Attempts)
	assert.Equal(t, 0, backend.calls)
	assert.True(t, errors.Is(out.Err, context.Canceled))
}
