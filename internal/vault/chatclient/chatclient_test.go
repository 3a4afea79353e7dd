package chatclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s4birli/MindVault/internal/llm"
)

func TestStripFence_RemovesJSONFence(t *testing.T) {
	t.Parallel()
	in := "```json\n{\"a\":1}\n```"
	assert.Equal(t, `{"a":1}`, stripFence(in))
}

func TestStripFence_RemovesBareFence(t *testing.T) {
	t.Parallel()
	in := "```\n{\"a\":1}\n```"
	assert.Equal(t, `{"a":1}`, stripFence(in))
}

func TestStripFence_LeavesUnfencedTextUnchanged(t *testing.T) {
	t.Parallel()
	in := `{"a":1}`
	assert.Equal(t, in, stripFence(in))
}

func TestClient_NilProviderIsUnavailable(t *testing.T) {
	t.Parallel()
	c := New(nil)
	assert.False(t, c.Available())
	text, ok := c.Complete(context.Background(), nil, llm.ChatOptions{})
	assert.False(t, ok)
	assert.Equal(t, "", text)
}
