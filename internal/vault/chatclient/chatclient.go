// Package chatclient wraps an llm.Provider with the JSON-mode defensive
// parsing and redacted logging conventions spec §4.B requires: callers must
// treat unparseable output as "no result", never as a fatal error.
package chatclient

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/s4birli/MindVault/internal/llm"
	"github.com/s4birli/MindVault/internal/observability"
)

// Client adapts an llm.Provider for the vault's chat needs.
type Client struct {
	provider llm.Provider
}

// New wraps provider. A nil provider yields a Client whose Available reports
// false and whose Complete and CompleteJSON always report failure, letting
// callers exercise their fallback paths.
func New(provider llm.Provider) *Client {
	return &Client{provider: provider}
}

// Available reports whether a real provider is configured.
func (c *Client) Available() bool {
	return c != nil && c.provider != nil
}

// Complete issues a free-form completion. Returns ("", false) on any
// failure or when no provider is configured; never returns an error, per
// spec §4.B's "never a fatal ingestion error" rule for chat failures.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.ChatOptions) (string, bool) {
	if !c.Available() {
		return "", false
	}
	text, err := c.provider.Complete(ctx, messages, opts)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("provider", c.provider.Name()).Msg("chat completion failed")
		return "", false
	}
	return text, true
}

// CompleteJSON issues a JSON-mode completion and unmarshals the result into
// out. It strips a fenced code block if the provider wrapped its JSON in
// ```json ... ``` despite being asked for a bare object. Returns false on
// any failure; callers must treat that as "no result".
func (c *Client) CompleteJSON(ctx context.Context, messages []llm.Message, opts llm.ChatOptions, out any) bool {
	opts.JSONMode = true
	text, ok := c.Complete(ctx, messages, opts)
	if !ok {
		return false
	}
	cleaned := stripFence(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		raw := "[REDACTED]"
		if json.Valid([]byte(cleaned)) {
			raw = string(observability.RedactJSON(json.RawMessage(cleaned)))
		}
		log.Ctx(ctx).Warn().Err(err).Str("raw", raw).Msg("chat json parse failed")
		return false
	}
	return true
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
