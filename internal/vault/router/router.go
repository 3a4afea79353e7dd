// Package router implements spec §4.K: an LLM-backed intent classifier with
// a regex/heuristic fallback, grounded in the teacher's
// internal/specialists/router.go contains/regex matcher generalized to the
// two-path (LLM-then-regex) design this spec requires.
package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/s4birli/MindVault/internal/llm"
	"github.com/s4birli/MindVault/internal/vault/chatclient"
)

// Decision is the result of routing one free-text request.
type Decision struct {
	Intent     string // empty means "no match"
	Params     map[string]any
	Confidence float64
	Reason     string
	Error      string
}

// Router classifies free text into (agent name, typed params).
type Router struct {
	chat    *chatclient.Client
	model   string
	allowed []string
}

// New constructs a Router. allowed is the whitelist of registered agent
// names, typically agents.Registry.Names().
func New(chat *chatclient.Client, model string, allowed []string) *Router {
	return &Router{chat: chat, model: model, allowed: allowed}
}

type llmResponse struct {
	Intent         *string        `json:"intent"`
	Params         map[string]any `json:"params"`
	Confidence     float64        `json:"confidence"`
	Reason         string         `json:"reason"`
	DateWindowDays int            `json:"date_window_days"`
}

// Route implements the primary LLM path, falling back to regex heuristics
// when the chat client is unavailable. userParams, when non-nil, override
// the router's extracted params per spec §4.K's last rule.
func (r *Router) Route(ctx context.Context, text string, userParams map[string]any) Decision {
	var decision Decision
	if r.chat != nil && r.chat.Available() {
		decision = r.routeLLM(ctx, text)
	} else {
		decision = r.routeFallback(text)
	}

	for k, v := range userParams {
		if decision.Params == nil {
			decision.Params = map[string]any{}
		}
		decision.Params[k] = v
	}

	if decision.Confidence < 0.3 || decision.Intent == "" {
		return Decision{Reason: "confidence below threshold or no intent", Params: decision.Params}
	}
	return decision
}

func (r *Router) routeLLM(ctx context.Context, text string) Decision {
	prompt := buildPrompt(text, r.allowed)
	var resp llmResponse
	ok := r.chat.CompleteJSON(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: prompt},
		{Role: llm.RoleUser, Content: text},
	}, llm.ChatOptions{Temperature: 0}, &resp)
	if !ok {
		return r.routeFallback(text)
	}

	intent := ""
	if resp.Intent != nil {
		intent = *resp.Intent
	}
	if intent != "" && !contains(r.allowed, intent) {
		intent = ""
	}

	params := normalizeParams(intent, resp.Params)
	if resp.DateWindowDays > 0 {
		days := clamp(resp.DateWindowDays, 1, 365)
		params["date_from"] = time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour).Format(time.RFC3339)
	}

	return Decision{
		Intent:     intent,
		Params:     params,
		Confidence: clampFloat(resp.Confidence, 0, 1),
		Reason:     resp.Reason,
	}
}

func buildPrompt(text string, allowed []string) string {
	var b strings.Builder
	b.WriteString("You route a user's free-text request to one registered agent. ")
	b.WriteString("Allowed agents: " + strings.Join(allowed, ", ") + ". ")
	b.WriteString("search.latest_from(sender?, domain?, limit?, date_from?, date_to?, language?): most recent messages from a sender or domain. ")
	b.WriteString("search.find(query?, keywords?, tags?, boost_tags?, limit?, offset?, date_from?, date_to?, language?): full hybrid search by topic. ")
	b.WriteString("search.summarize(doc_ids, language?, summary_type?, max_docs?): summarize known documents. ")
	b.WriteString("Decision rule: if the text mentions both a sender/org AND a topic/keywords, choose search.find; ")
	b.WriteString("if it mentions only a sender/domain, choose search.latest_from; consider search.summarize when document ids are referenced. ")
	b.WriteString(`Respond with JSON: {"intent": "<name-or-null>", "params": {...}, "confidence": <0..1>, "reason": "...", "date_window_days": <int-or-0>}`)
	_ = text
	return b.String()
}

func normalizeParams(intent string, params map[string]any) map[string]any {
	if params == nil {
		params = map[string]any{}
	}
	if v, ok := params["sender"].(string); ok {
		params["sender"] = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := params["domain"].(string); ok {
		params["domain"] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(v), "@"))
	}
	if v, ok := numeric(params["limit"]); ok {
		max := 200
		if intent == "search.latest_from" {
			max = 50
		}
		params["limit"] = clamp(int(v), 1, max)
	}
	if v, ok := numeric(params["offset"]); ok {
		params["offset"] = clamp(int(v), 0, int(^uint(0)>>1))
	}
	if v, ok := numeric(params["decay_days"]); ok {
		params["decay_days"] = clamp(int(v), 1, 30)
	}
	if v, ok := numeric(params["date_window_days"]); ok {
		params["date_window_days"] = clamp(int(v), 1, 365)
	}
	for _, key := range []string{"keywords", "tags", "boost_tags"} {
		if list, ok := params[key].([]any); ok {
			params[key] = lowerNonEmpty(list)
		}
	}
	return params
}

func lowerNonEmpty(list []any) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// --- fallback heuristics ---

var (
	trPossessiveSenderRe = regexp.MustCompile(`(?i)(\w+)'(?:dan|den)\s+gelen`)
	trSenderEmailsRe     = regexp.MustCompile(`(?i)(\w+)\s+(emailleri|mailler)`)
	trNameApostropheRe   = regexp.MustCompile(`([A-ZÇĞİÖŞÜ][\wÇĞİıÖŞÜçğöşü]*)'\w+`)
	enFromNameRe         = regexp.MustCompile(`(?i)\bfrom\s+(\w+)`)
	enEmailAddrRe        = regexp.MustCompile(`(?i)([\w.+-]+)@([\w-]+\.[\w.-]+)`)
	enEmailWordRe        = regexp.MustCompile(`(?i)(\w+)\s+email\b`)

	trTopicRe = regexp.MustCompile(`(?i)(.+?)\s+(ile ilgili|hakkında)`)
	enTopicRe = regexp.MustCompile(`(?i)(?:about|topic:|konu:)\s*(.+)`)

	trLimitRe = regexp.MustCompile(`(?i)son\s+(\d+)|(\d+)\s+tane`)
	enLimitRe = regexp.MustCompile(`(?i)last\s+(\d+)`)

	emailCueRe = regexp.MustCompile(`(?i)email|e-posta|posta|mail`)
)

// routeFallback implements spec §4.K's regex/heuristic path.
func (r *Router) routeFallback(text string) Decision {
	if !emailCueRe.MatchString(text) {
		return Decision{Reason: "no email cue found"}
	}

	sender, domain := extractSenderOrDomain(text)
	topic := extractTopic(text)

	params := map[string]any{}
	if sender != "" {
		params["sender"] = sender
	}
	if domain != "" {
		params["domain"] = domain
	}
	if limit := extractLimit(text); limit > 0 {
		params["limit"] = limit
	}

	switch {
	case (sender != "" || domain != "") && len(topic) > 0:
		params["keywords"] = topic
		return Decision{Intent: "search.find", Params: params, Confidence: 0.6, Reason: "sender and topic matched"}
	case sender != "" || domain != "":
		return Decision{Intent: "search.latest_from", Params: params, Confidence: 0.6, Reason: "sender matched"}
	default:
		return Decision{Reason: "no sender or topic matched"}
	}
}

func extractSenderOrDomain(text string) (sender, domain string) {
	if m := trPossessiveSenderRe.FindStringSubmatch(text); len(m) == 2 {
		return strings.ToLower(m[1]), ""
	}
	if m := trSenderEmailsRe.FindStringSubmatch(text); len(m) == 3 {
		return strings.ToLower(m[1]), ""
	}
	if m := enEmailAddrRe.FindStringSubmatch(text); len(m) == 3 {
		return strings.ToLower(m[1]), strings.ToLower(m[2])
	}
	if m := enFromNameRe.FindStringSubmatch(text); len(m) == 2 {
		return strings.ToLower(m[1]), ""
	}
	if m := enEmailWordRe.FindStringSubmatch(text); len(m) == 2 {
		return strings.ToLower(m[1]), ""
	}
	if m := trNameApostropheRe.FindStringSubmatch(text); len(m) == 2 {
		return strings.ToLower(m[1]), ""
	}
	return "", ""
}

func extractTopic(text string) []string {
	var phrase string
	if m := trTopicRe.FindStringSubmatch(text); len(m) == 3 {
		phrase = m[1]
	} else if m := enTopicRe.FindStringSubmatch(text); len(m) == 2 {
		phrase = m[1]
	}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil
	}
	fields := strings.Fields(strings.ToLower(phrase))
	return fields
}

func extractLimit(text string) int {
	if m := trLimitRe.FindStringSubmatch(text); len(m) == 3 {
		for _, g := range m[1:] {
			if g != "" {
				var n int
				fmt.Sscanf(g, "%d", &n)
				return n
			}
		}
	}
	if m := enLimitRe.FindStringSubmatch(text); len(m) == 2 {
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		return n
	}
	return 0
}
