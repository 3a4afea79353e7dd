package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/s4birli/MindVault/internal/llm"
	"github.com/s4birli/MindVault/internal/vault/chatclient"
	"github.com/s4birli/MindVault/internal/vault/model"
	"github.com/s4birli/MindVault/internal/vault/store"
)

// NewSearchSummarize builds the search.summarize handler of spec §4.M.
func NewSearchSummarize(st *store.Store, chat *chatclient.Client) Handler {
	return func(ctx context.Context, params map[string]any) (map[string]any, error) {
		docIDs := stringSliceParam(params, "doc_ids")
		if len(docIDs) == 0 {
			return nil, fmt.Errorf("doc_ids is required and must be non-empty")
		}
		language := stringParam(params, "language")
		if language == "" {
			language = "tr"
		}
		summaryType := stringParam(params, "summary_type")
		if summaryType == "" {
			summaryType = "brief"
		}
		maxDocs := intParam(params, "max_docs", 10)
		if maxDocs > 20 {
			maxDocs = 20
		}
		if len(docIDs) > maxDocs {
			docIDs = docIDs[:maxDocs]
		}

		docs, err := st.GetByIDs(ctx, docIDs)
		if err != nil {
			return nil, err
		}

		summary, ok := summarize(ctx, chat, docs, language, summaryType)
		if !ok {
			summary = fallbackSummarize(docs, language)
		}

		refs := make([]map[string]any, 0, len(docs))
		for i, d := range docs {
			refs = append(refs, map[string]any{
				"id":        d.ID,
				"title":     d.Title,
				"url":       d.SourceURL,
				"reference": fmt.Sprintf("[Doc %d]", i+1),
			})
		}

		return map[string]any{
			"summary":      summary,
			"source_refs":  refs,
			"summary_type": summaryType,
			"language":     language,
			"doc_count":    len(docs),
		}, nil
	}
}

func summarize(ctx context.Context, chat *chatclient.Client, docs []model.Document, language, summaryType string) (string, bool) {
	if !chat.Available() {
		return "", false
	}
	var blocks strings.Builder
	for i, d := range docs {
		body := d.PlainText
		if r := []rune(body); len(r) > 2000 {
			body = string(r[:2000])
		}
		fmt.Fprintf(&blocks, "[Doc %d] %s\n%s\n\n", i+1, d.Title, body)
	}

	instruction := summaryInstruction(language, summaryType)
	text, ok := chat.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: instruction},
		{Role: llm.RoleUser, Content: blocks.String()},
	}, llm.ChatOptions{Temperature: 0.2, MaxTokens: 600})
	return text, ok
}

func summaryInstruction(language, summaryType string) string {
	lang := "English"
	if language == "tr" {
		lang = "Turkish"
	}
	shape := "a brief paragraph"
	switch summaryType {
	case "detailed":
		shape = "a detailed multi-paragraph summary"
	case "bullet_points":
		shape = "a bulleted list"
	}
	return fmt.Sprintf("Summarize the documents below in %s as %s. Refer to documents using their [Doc i] labels.", lang, shape)
}

func fallbackSummarize(docs []model.Document, language string) string {
	var b strings.Builder
	if language == "tr" {
		b.WriteString("Özet oluşturulamadı. Belgeler: ")
	} else {
		b.WriteString("Summary unavailable. Documents: ")
	}
	titles := make([]string, 0, len(docs))
	for i, d := range docs {
		titles = append(titles, fmt.Sprintf("[Doc %d] %s", i+1, d.Title))
	}
	b.WriteString(strings.Join(titles, "; "))
	return b.String()
}
