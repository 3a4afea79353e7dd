package embedclient

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4birli/MindVault/internal/config"
)

type failingProvider struct {
	err error
}

func (p failingProvider) EmbedBatch(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	return nil, p.err
}

func TestDeterministicVector_IsStableAndUnitLength(t *testing.T) {
	t.Parallel()
	a := deterministicVector("hello world", 32)
	b := deterministicVector("hello world", 32)
	require.Equal(t, a, b)

	var sum float64
	for _, x := range a {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestDeterministicVector_DiffersAcrossInputs(t *testing.T) {
	t.Parallel()
	a := deterministicVector("alpha", 16)
	b := deterministicVector("beta", 16)
	assert.NotEqual(t, a, b)
}

func TestMean_AveragesComponentwise(t *testing.T) {
	t.Parallel()
	m := Mean([][]float32{{1, 2, 3}, {3, 4, 5}})
	assert.Equal(t, []float32{2, 3, 4}, m)
}

func TestMean_EmptyReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Mean(nil))
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, isRetryable(errors.New("rate limit exceeded")))
	assert.True(t, isRetryable(errors.New("upstream 503 bad gateway")))
	assert.False(t, isRetryable(errors.New("invalid api key")))
	assert.False(t, isRetryable(ErrDimensionMismatch))
	assert.False(t, isRetryable(nil))
}

func TestIsAuthError(t *testing.T) {
	t.Parallel()
	assert.True(t, isAuthError(errors.New("401 unauthorized")))
	assert.True(t, isAuthError(errors.New("invalid_api_key provided")))
	assert.True(t, isAuthError(errors.New("quota exceeded")))
	assert.False(t, isAuthError(errors.New("rate limit exceeded")))
	assert.False(t, isAuthError(nil))
}

func TestEmbedBatch_AuthErrorWrapsErrUpstreamAuth(t *testing.T) {
	t.Parallel()
	c := New(config.EmbeddingConfig{RetryMax: 2}, failingProvider{err: errors.New("401 unauthorized")}, nil)
	_, err := c.EmbedBatch(context.Background(), []string{"hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestEmbedBatch_ExhaustedRetriesWrapsErrUpstreamTransient(t *testing.T) {
	t.Parallel()
	c := New(config.EmbeddingConfig{RetryMax: 0, RetryBase: 0.001}, failingProvider{err: errors.New("503 service unavailable")}, nil)
	_, err := c.EmbedBatch(context.Background(), []string{"hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamTransient)
}
