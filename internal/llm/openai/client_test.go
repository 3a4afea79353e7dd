package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4birli/MindVault/internal/llm"
)

func TestComplete_ReturnsFirstChoiceContent(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":1,"completion_tokens":1}}`))
	}))
	t.Cleanup(srv.Close)

	client := New("test-key", srv.URL)
	text, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
	}, llm.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestComplete_EmptyChoicesErrors(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(srv.Close)

	client := New("test-key", srv.URL)
	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, llm.ChatOptions{})
	require.Error(t, err)
}

func TestComplete_JSONModeSetsResponseFormat(t *testing.T) {
	t.Parallel()
	var reqBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		_ = json.NewDecoder(r.Body).Decode(&reqBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`))
	}))
	t.Cleanup(srv.Close)

	client := New("test-key", srv.URL)
	_, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
	}, llm.ChatOptions{JSONMode: true})
	require.NoError(t, err)

	rf, ok := reqBody["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", rf["type"])
}

func TestEmbedBatch_OrdersVectorsByIndex(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0.2,0.3]},{"index":0,"embedding":[0.1,0.1]}]}`))
	}))
	t.Cleanup(srv.Close)

	client := New("test-key", srv.URL)
	vecs, err := client.EmbedBatch(context.Background(), "text-embedding-3-small", []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0.1, 0.1}, vecs[0])
	assert.Equal(t, []float32{0.2, 0.3}, vecs[1])
}

func TestEmbedBatch_EmptyInputReturnsNil(t *testing.T) {
	t.Parallel()
	client := New("test-key", "")
	vecs, err := client.EmbedBatch(context.Background(), "m", nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, IsRetryable(errors.New("rate limit hit")))
	assert.True(t, IsRetryable(errors.New("503 service unavailable")))
	assert.False(t, IsRetryable(errors.New("invalid request")))
	assert.False(t, IsRetryable(nil))
}
