package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4birli/MindVault/internal/llm"
)

func TestComplete_ReturnsConcatenatedTextBlocks(t *testing.T) {
	t.Parallel()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		defer r.Body.Close()
		w.Header().Set("Content-Type", "application/json")
		resp := sdk.Message{
			ID:         "msg_1",
			Type:       constant.Message("message"),
			Role:       constant.Assistant("assistant"),
			StopReason: sdk.StopReasonEndTurn,
			Content: []sdk.ContentBlockUnion{
				{Type: "text", Text: "hello "},
				{Type: "text", Text: "world"},
			},
		}
		b, _ := json.Marshal(resp)
		_, _ = w.Write(b)
	}))
	t.Cleanup(srv.Close)

	client := New("test-key", srv.URL)
	text, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be terse"},
		{Role: llm.RoleUser, Content: "say hi"},
	}, llm.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, "/v1/messages", gotPath)
}

func TestComplete_JSONModeAppendsInstructionToSystem(t *testing.T) {
	t.Parallel()
	var reqBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		_ = json.NewDecoder(r.Body).Decode(&reqBody)
		w.Header().Set("Content-Type", "application/json")
		resp := sdk.Message{
			ID:         "msg_2",
			Type:       constant.Message("message"),
			Role:       constant.Assistant("assistant"),
			StopReason: sdk.StopReasonEndTurn,
			Content:    []sdk.ContentBlockUnion{{Type: "text", Text: `{"ok":true}`}},
		}
		b, _ := json.Marshal(resp)
		_, _ = w.Write(b)
	}))
	t.Cleanup(srv.Close)

	client := New("test-key", srv.URL)
	_, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "give me json"},
	}, llm.ChatOptions{JSONMode: true})
	require.NoError(t, err)

	sysAny, ok := reqBody["system"]
	require.True(t, ok)
	sysList, ok := sysAny.([]any)
	require.True(t, ok)
	require.NotEmpty(t, sysList)
	sys0, ok := sysList[0].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, sys0["text"], "Respond with a single JSON object")
}

func TestName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "anthropic", New("k", "").Name())
}
