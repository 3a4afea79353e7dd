// Package anthropic adapts the Anthropic Go SDK to the llm.Provider
// contract as an alternate chat backend.
package anthropic

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/s4birli/MindVault/internal/llm"
	"github.com/s4birli/MindVault/internal/observability"
)

// Client wraps an Anthropic SDK client for chat completion.
type Client struct {
	sdk sdk.Client
}

// New constructs a Client. baseURL may be empty to use the default endpoint.
func New(apiKey, baseURL string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{sdk: sdk.NewClient(opts...)}
}

func (c *Client) Name() string { return "anthropic" }

// Complete implements llm.Provider. Anthropic has no native JSON response
// mode, so json-mode requests are enforced by instruction only; the caller
// is expected to defensively parse the result regardless.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.ChatOptions) (string, error) {
	var system string
	userMsgs := make([]sdk.MessageParam, 0, len(messages))
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		userMsgs = append(userMsgs, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
	}
	if opts.JSONMode {
		if system != "" {
			system += "\n"
		}
		system += "Respond with a single JSON object and nothing else."
	}

	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	resp, err := c.sdk.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.ModelClaude3_5HaikuLatest,
		MaxTokens:   maxTokens,
		System:      []sdk.TextBlockParam{{Text: system}},
		Messages:    userMsgs,
		Temperature: sdk.Float(opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}
	var out string
	for _, block := range resp.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	log := observability.LoggerWithTrace(ctx)
	log.Debug().
		Int64("input_tokens", resp.Usage.InputTokens).
		Int64("output_tokens", resp.Usage.OutputTokens).
		Str("model", string(sdk.ModelClaude3_5HaikuLatest)).
		Msg("anthropic message")
	return out, nil
}
