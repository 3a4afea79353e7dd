// Package tagextract derives topical tags from a document's subject and
// body via the chat client, per spec §4.F. Any failure degrades to an empty
// tag list; extraction never fails an ingest.
package tagextract

import (
	"context"
	"fmt"

	"github.com/s4birli/MindVault/internal/llm"
	"github.com/s4birli/MindVault/internal/vault/chatclient"
	"github.com/s4birli/MindVault/internal/vault/model"
)

const maxTags = 5

const systemPrompt = `You extract up to 5 short topical tags from an email's subject and body.
Respond with a JSON object: {"tags": ["tag1", "tag2", ...]}. Tags must be
lowercase, single words or short phrases, no punctuation.`

type response struct {
	Tags []string `json:"tags"`
}

// Extractor calls a chat client in JSON mode to derive tags.
type Extractor struct {
	chat       *chatclient.Client
	model      string
	textBudget int
}

// New constructs an Extractor. model is stored but not sent: Extract goes
// through the chat client, which uses its provider's default model.
// textBudget caps how much of subject+body is sent.
func New(chat *chatclient.Client, model string, textBudget int) *Extractor {
	if textBudget <= 0 {
		textBudget = 2000
	}
	return &Extractor{chat: chat, model: model, textBudget: textBudget}
}

// Extract returns up to 5 lowercase, deduplicated tags, or an empty slice
// on any failure.
func (e *Extractor) Extract(ctx context.Context, subject, body string) []string {
	if e == nil || e.chat == nil || !e.chat.Available() {
		return nil
	}
	input := subject + "\n\n" + body
	if r := []rune(input); len(r) > e.textBudget {
		input = string(r[:e.textBudget])
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("SUBJECT: %s\nBODY: %s", subject, input)},
	}

	var resp response
	if !e.chat.CompleteJSON(ctx, messages, llm.ChatOptions{Temperature: 0, MaxTokens: 200}, &resp) {
		return nil
	}
	tags := model.NormalizeTags(resp.Tags)
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}
