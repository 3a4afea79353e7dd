package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4birli/MindVault/internal/vault/chatclient"
)

func noLLM() *Router {
	return New(chatclient.New(nil), "intent-model", []string{"search.latest_from", "search.find", "search.summarize"})
}

func TestRoute_TurkishSenderOnlyGoesToLatestFrom(t *testing.T) {
	t.Parallel()
	r := noLLM()
	d := r.Route(context.Background(), "HMRC'den gelen en son email neydi?", nil)
	require.Equal(t, "search.latest_from", d.Intent)
	assert.Equal(t, "hmrc", d.Params["sender"])
	assert.InDelta(t, 0.6, d.Confidence, 0.001)
}

func TestRoute_SenderAndTopicGoesToFind(t *testing.T) {
	t.Parallel()
	r := noLLM()
	d := r.Route(context.Background(), "Bruce'a fare ile ilgili mail neydi?", nil)
	require.Equal(t, "search.find", d.Intent)
	assert.Contains(t, d.Params["keywords"], "fare")
}

func TestRoute_NoEmailCueYieldsNoIntent(t *testing.T) {
	t.Parallel()
	r := noLLM()
	d := r.Route(context.Background(), "what's the weather like", nil)
	assert.Equal(t, "", d.Intent)
}

func TestRoute_UserParamsOverride(t *testing.T) {
	t.Parallel()
	r := noLLM()
	d := r.Route(context.Background(), "HMRC'den gelen son 3 email", map[string]any{"limit": 9})
	require.Equal(t, "search.latest_from", d.Intent)
	assert.EqualValues(t, 9, d.Params["limit"])
}

func TestNormalizeParams_ClampsLimitPerIntent(t *testing.T) {
	t.Parallel()
	p := normalizeParams("search.latest_from", map[string]any{"limit": 500.0})
	assert.Equal(t, 50, p["limit"])

	p2 := normalizeParams("search.find", map[string]any{"limit": 500.0})
	assert.Equal(t, 200, p2["limit"])
}

func TestNormalizeParams_ClampsDecayAndDateWindow(t *testing.T) {
	t.Parallel()
	p := normalizeParams("search.find", map[string]any{"decay_days": 999.0, "date_window_days": 0.0})
	assert.Equal(t, 30, p["decay_days"])
	assert.Equal(t, 1, p["date_window_days"])
}
