// Package openai adapts the OpenAI Go SDK to the llm.Provider contract, and
// additionally exposes the embeddings endpoint used by
// internal/vault/embedclient.
package openai

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/s4birli/MindVault/internal/llm"
	"github.com/s4birli/MindVault/internal/observability"
)

// Client wraps an OpenAI SDK client for chat completion and embeddings.
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

func (c *Client) Name() string { return "openai" }

// Complete implements llm.Provider.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.ChatOptions) (string, error) {
	params := sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModelGPT4oMini,
		Messages:    adaptMessages(messages),
		Temperature: sdk.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(opts.MaxTokens))
	}
	if opts.JSONMode {
		params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &sdk.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: empty choices")
	}
	log := observability.LoggerWithTrace(ctx)
	log.Debug().
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Str("model", string(params.Model)).
		Msg("openai chat completion")
	return resp.Choices[0].Message.Content, nil
}

// CompleteModel is like Complete but overrides the model name. It is not
// part of llm.Provider; the vault's chat paths call Complete, which uses
// the default model.
func (c *Client) CompleteModel(ctx context.Context, model string, messages []llm.Message, opts llm.ChatOptions) (string, error) {
	params := sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(model),
		Messages:    adaptMessages(messages),
		Temperature: sdk.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(opts.MaxTokens))
	}
	if opts.JSONMode {
		params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &sdk.ResponseFormatJSONObjectParam{},
		}
	}
	resp, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// EmbedBatch calls the embeddings endpoint for a batch of inputs, returning
// one vector per input in order.
func (c *Client) EmbedBatch(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	resp, err := c.sdk.Embeddings.New(ctx, sdk.EmbeddingNewParams{
		Model: sdk.EmbeddingModel(model),
		Input: sdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		out[d.Index] = vec
	}
	return out, nil
}

func adaptMessages(messages []llm.Message) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, sdk.SystemMessage(m.Content))
		default:
			out = append(out, sdk.UserMessage(m.Content))
		}
	}
	return out
}

// IsRetryable reports whether err looks like a transient upstream failure
// per the retry rules: rate-limit, timeout, 503, bad gateway, or a message
// containing "temporarily".
func IsRetryable(err error) bool {
	if err == nil {
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
