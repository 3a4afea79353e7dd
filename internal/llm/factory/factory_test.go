package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4birli/MindVault/internal/config"
)

func TestBuild_OpenAIRequiresAPIKey(t *testing.T) {
	t.Parallel()
	_, err := Build(config.Config{Chat: config.ChatConfig{Provider: "openai"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestBuild_OpenAIDefaultWhenProviderEmpty(t *testing.T) {
	t.Parallel()
	p, err := Build(config.Config{OpenAI: config.OpenAIConfig{APIKey: "sk-test"}})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestBuild_AnthropicRequiresAPIKey(t *testing.T) {
	t.Parallel()
	_, err := Build(config.Config{Chat: config.ChatConfig{Provider: "anthropic"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestBuild_AnthropicSucceedsWithKey(t *testing.T) {
	t.Parallel()
	p, err := Build(config.Config{
		Chat:      config.ChatConfig{Provider: "anthropic"},
		Anthropic: config.AnthropicConfig{APIKey: "sk-ant-test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())
}

func TestBuild_UnknownProviderErrors(t *testing.T) {
	t.Parallel()
	_, err := Build(config.Config{Chat: config.ChatConfig{Provider: "bogus"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chat provider")
}
