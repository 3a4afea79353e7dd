// Package embedclient produces unit-length embedding vectors for text, per
// spec §4.A: batched provider calls, exponential backoff on transient
// failures, a Redis front cache, and deterministic blake2b-seeded
// pseudo-vectors for local development when no provider credential is
// configured.
package embedclient

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"github.com/s4birli/MindVault/internal/config"
)

// ErrDimensionMismatch is returned when a provider's vector length does not
// match the configured dimension. Per spec this is non-retryable.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ErrUpstreamAuth wraps a provider error that looks like rejected
// credentials or quota; callers map this to a 502
// embedding_provider_auth_error per spec §7.
var ErrUpstreamAuth = errors.New("embedding provider auth error")

// ErrUpstreamTransient wraps a provider error that remained retryable after
// the retry budget was exhausted; callers map this to a 502 per spec §7.
var ErrUpstreamTransient = errors.New("embedding provider transient error")

// Provider is the narrow surface embedclient needs from an LLM client.
type Provider interface {
	EmbedBatch(ctx context.Context, model string, inputs []string) ([][]float32, error)
}

// Client embeds text in batches with retry/backoff, an optional Redis
// cache, and a one-shot warmup latch per process.
type Client struct {
	cfg      config.EmbeddingConfig
	provider Provider
	cache    *redis.Client

	warmOnce sync.Once
}

// New constructs a Client. provider may be nil: then, as when
// cfg.LocalEmbed is true, deterministic pseudo-vectors are returned instead
// of provider calls. cache may be nil to disable caching.
func New(cfg config.EmbeddingConfig, provider Provider, cache *redis.Client) *Client {
	return &Client{cfg: cfg, provider: provider, cache: cache}
}

// Dimension returns the configured embedding dimensionality.
func (c *Client) Dimension() int { return c.cfg.Dim }

// Warmup performs a zero-cost embedding call once per process so the first
// real request does not pay provider cold-start latency. Subsequent calls
// are no-ops. Safe to call concurrently.
func (c *Client) Warmup(ctx context.Context) {
	c.warmOnce.Do(func() {
		wctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if c.cache != nil {
			key := "vault:warmed:" + c.cfg.Model
			ok, err := c.cache.SetNX(wctx, key, "1", 24*time.Hour).Result()
			if err == nil && !ok {
				return // another process already warmed this model
			}
		}
		if _, err := c.EmbedBatch(wctx, []string{"warmup"}); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("embedding warmup failed")
		}
	})
}

// EmbedBatch embeds texts, splitting into provider batches of at most
// cfg.Batch, with a Redis-backed cache consulted before any provider call.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	missing := make([]string, 0, len(texts))
	missingIdx := make([]int, 0, len(texts))

	for i, t := range texts {
		if v, ok := c.cacheGet(ctx, t); ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}

	batch := c.cfg.Batch
	if batch <= 0 {
		batch = 64
	}
	for start := 0; start < len(missing); start += batch {
		end := start + batch
		if end > len(missing) {
			end = len(missing)
		}
		vecs, err := c.embedWithRetry(ctx, missing[start:end])
		if err != nil {
			return nil, err
		}
		for j, v := range vecs {
			idx := missingIdx[start+j]
			out[idx] = v
			c.cacheSet(ctx, missing[start+j], v)
		}
	}
	return out, nil
}

func (c *Client) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	if c.cfg.LocalEmbed || c.provider == nil {
		return c.deterministicBatch(texts), nil
	}

	max := c.cfg.RetryMax
	if max <= 0 {
		max = 3
	}
	base := c.cfg.RetryBase
	if base <= 0 {
		base = 1.0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		actx, cancel := context.WithTimeout(ctx, 60*time.Second)
		vecs, err := c.provider.EmbedBatch(actx, c.cfg.Model, texts)
		cancel()
		if err == nil {
			for _, v := range vecs {
				if c.cfg.Dim > 0 && len(v) != c.cfg.Dim {
					return nil, fmt.Errorf("%w: got %d want %d", ErrDimensionMismatch, len(v), c.cfg.Dim)
				}
			}
			return vecs, nil
		}
		lastErr = err
		if isAuthError(err) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
		}
		if !isRetryable(err) || attempt == max {
			break
		}
		sleep := time.Duration(base * math.Pow(2, float64(attempt)) * float64(time.Second))
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if isRetryable(lastErr) {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamTransient, lastErr)
	}
	return nil, fmt.Errorf("embedding failed after retries: %w", lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDimensionMismatch) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"rate limit", "timeout", "503", "bad gateway", "temporarily"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// isAuthError reports whether err looks like the provider rejected our
// credentials or quota, per spec §7's "upstream auth/quota" error kind.
// Matched by message since embedclient only depends on the narrow Provider
// interface, never a concrete SDK error type.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"401", "403", "unauthorized", "invalid api key", "invalid_api_key", "quota", "permission denied"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// deterministicBatch produces blake2b-seeded pseudo-vectors for local
// development. Production code paths must not rely on this mode.
func (c *Client) deterministicBatch(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = deterministicVector(t, c.cfg.Dim)
	}
	return out
}

func deterministicVector(text string, dim int) []float32 {
	if dim <= 0 {
		dim = 1536
	}
	v := make([]float32, dim)
	sum := blake2b.Sum512([]byte(text))
	// Expand the 64-byte digest into `dim` floats by repeated re-hashing,
	// keeping the process fully deterministic in the text alone.
	seed := sum[:]
	for i := 0; i < dim; i++ {
		if i > 0 && i%64 == 0 {
			next := blake2b.Sum512(seed)
			seed = next[:]
		}
		word := binary.LittleEndian.Uint32(seed[(i%61) : (i%61)+4])
		v[i] = float32(int32(word)) / float32(math.MaxInt32)
	}
	return unitNormalize(v)
}

func unitNormalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}

func (c *Client) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.cfg.Model + "\x1e" + text))
	return fmt.Sprintf("vault:embed:%x", h)
}

func (c *Client) cacheGet(ctx context.Context, text string) ([]float32, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, c.cacheKey(text)).Bytes()
	if err != nil {
		return nil, false
	}
	var v []float32
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

func (c *Client) cacheSet(ctx context.Context, text string, v []float32) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, c.cacheKey(text), raw, 30*24*time.Hour).Err()
}

// Mean returns the arithmetic mean of vectors, or nil if vectors is empty.
func Mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	out := make([]float32, dim)
	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			out[i] += v[i]
		}
	}
	n := float32(len(vectors))
	for i := range out {
		out[i] /= n
	}
	return out
}
