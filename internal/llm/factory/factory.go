// Package factory selects a chat provider implementation from configuration,
// mirroring the teacher's providers.Build switch but trimmed to the two
// providers this spec's chat client contract needs.
package factory

import (
	"fmt"

	"github.com/s4birli/MindVault/internal/config"
	"github.com/s4birli/MindVault/internal/llm"
	"github.com/s4birli/MindVault/internal/llm/anthropic"
	"github.com/s4birli/MindVault/internal/llm/openai"
)

// Build constructs the configured llm.Provider.
func Build(cfg config.Config) (llm.Provider, error) {
	switch cfg.Chat.Provider {
	case "", "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("chat provider openai requires OPENAI_API_KEY")
		}
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL), nil
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("chat provider anthropic requires ANTHROPIC_API_KEY")
		}
		return anthropic.New(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Chat.Provider)
	}
}
