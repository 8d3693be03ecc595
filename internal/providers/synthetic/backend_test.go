package synthetic

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/jpeg"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfood/internal/generation"
)

func TestInvokeIsDeterministic(t *testing.T) {
	b := New(zerolog.Nop())

	first, err := b.Invoke(context.Background(), generation.NewRequest("a bowl of kibble", 5))
	require.NoError(t, err)
	second, err := b.Invoke(context.Background(), generation.NewRequest("a bowl of kibble", 5))
	require.NoError(t, err)
	other, err := b.Invoke(context.Background(), generation.NewRequest("a bowl of kibble", 6))
	require.NoError(t, err)

	require.Len(t, first.Images, 1)
	assert.Equal(t, first.Images, second.Images)
	assert.NotEqual(t, first.Images, other.Images)
}

func TestInvokeProducesDecodableJPEG(t *testing.T) {
	resp, err := New(zerolog.Nop()).Invoke(context.Background(), generation.NewRequest("a bowl", 1))
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(resp.Images[0])
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}

func TestInvokeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(zerolog.Nop()).Invoke(ctx, generation.NewRequest("a bowl", 1))
	assert.ErrorIs(t, err, context.Canceled)
}
