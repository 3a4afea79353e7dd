// Package ask implements spec §4.I: inline filter/time-window parsing on a
// free-text query, delegation to the retriever, and answer synthesis via
// the chat client in either summary or email-draft mode.
package ask

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/s4birli/MindVault/internal/llm"
	"github.com/s4birli/MindVault/internal/vault/chatclient"
	"github.com/s4birli/MindVault/internal/vault/retrieve"
)

// Mode selects the answer-synthesis shape.
type Mode string

const (
	ModeSummary Mode = "summary"
	ModeEmail   Mode = "email"
)

// Request is one /ask call.
type Request struct {
	Query       string
	Language    string // "", "tr", "en" — empty triggers auto-detect
	Mode        Mode
	MaxSentences int
	Model       string
}

// Response mirrors the /ask wire shape.
type Response struct {
	Answer  string
	UsedIDs []string
	Sources []Source
	Subject string
	Body    string
	Format  string
}

// Source is one cited document.
type Source struct {
	ID    string
	Title string
	URL   string
}

// Engine composes the retriever and chat client.
type Engine struct {
	retriever *retrieve.Retriever
	chat      *chatclient.Client
}

// New constructs an Engine.
func New(retriever *retrieve.Retriever, chat *chatclient.Client) *Engine {
	return &Engine{retriever: retriever, chat: chat}
}

var (
	fromTokenRe   = regexp.MustCompile(`(?i)\bfrom:(\S+)`)
	senderTokenRe = regexp.MustCompile(`(?i)\bsender:"([^"]+)"`)
	tagTokenRe    = regexp.MustCompile(`(?i)\btag:(\S+)`)
	isTokenRe     = regexp.MustCompile(`(?i)\bis:(sent|inbox|important)\b`)

	trRelativeRe = regexp.MustCompile(`(?i)son\s+(\d+)\s+(gün|hafta|ay|yıl)`)
	enRelativeRe = regexp.MustCompile(`(?i)last\s+(\d+)\s+(days?|weeks?|months?|years?)`)
	trTodayRe    = regexp.MustCompile(`(?i)\bbugün\b`)
	trYesterdayRe = regexp.MustCompile(`(?i)\bdün\b`)
	enTodayRe    = regexp.MustCompile(`(?i)\btoday\b`)
	enYesterdayRe = regexp.MustCompile(`(?i)\byesterday\b`)

	trLatestRe = regexp.MustCompile(`(?i)en son|son (posta|email|e-posta)`)
	enLatestRe = regexp.MustCompile(`(?i)latest|most recent`)

	turkishRunes = "ıİğĞşŞöÖçÇüÜ"
)

// filters is the result of inline parsing.
type filters struct {
	from      []string
	tags      []string
	isFlags   []string
	dateFrom  *time.Time
	dateTo    *time.Time
	latest    bool
	cleaned   string
}

// parseInline implements spec §4.I step 2.
func parseInline(query string) filters {
	f := filters{}
	cleaned := query

	for _, m := range fromTokenRe.FindAllStringSubmatch(cleaned, -1) {
		f.from = append(f.from, strings.ToLower(m[1]))
	}
	cleaned = fromTokenRe.ReplaceAllString(cleaned, "")
	for _, m := range senderTokenRe.FindAllStringSubmatch(cleaned, -1) {
		f.from = append(f.from, strings.ToLower(m[1]))
	}
	cleaned = senderTokenRe.ReplaceAllString(cleaned, "")
	for _, m := range tagTokenRe.FindAllStringSubmatch(cleaned, -1) {
		f.tags = append(f.tags, strings.ToLower(m[1]))
	}
	cleaned = tagTokenRe.ReplaceAllString(cleaned, "")
	for _, m := range isTokenRe.FindAllStringSubmatch(cleaned, -1) {
		f.isFlags = append(f.isFlags, strings.ToLower(m[1]))
	}
	cleaned = isTokenRe.ReplaceAllString(cleaned, "")

	now := time.Now().UTC()
	switch {
	case trRelativeRe.MatchString(cleaned):
		m := trRelativeRe.FindStringSubmatch(cleaned)
		from := relativeStart(now, m[1], trUnitDays(m[2]))
		f.dateFrom, f.dateTo = &from, &now
		cleaned = trRelativeRe.ReplaceAllString(cleaned, "")
	case enRelativeRe.MatchString(cleaned):
		m := enRelativeRe.FindStringSubmatch(cleaned)
		from := relativeStart(now, m[1], enUnitDays(m[2]))
		f.dateFrom, f.dateTo = &from, &now
		cleaned = enRelativeRe.ReplaceAllString(cleaned, "")
	case trYesterdayRe.MatchString(cleaned):
		from := now.AddDate(0, 0, -1)
		f.dateFrom, f.dateTo = &from, &now
		cleaned = trYesterdayRe.ReplaceAllString(cleaned, "")
	case enYesterdayRe.MatchString(cleaned):
		from := now.AddDate(0, 0, -1)
		f.dateFrom, f.dateTo = &from, &now
		cleaned = enYesterdayRe.ReplaceAllString(cleaned, "")
	case trTodayRe.MatchString(cleaned):
		from := now.Truncate(24 * time.Hour)
		f.dateFrom, f.dateTo = &from, &now
		cleaned = trTodayRe.ReplaceAllString(cleaned, "")
	case enTodayRe.MatchString(cleaned):
		from := now.Truncate(24 * time.Hour)
		f.dateFrom, f.dateTo = &from, &now
		cleaned = enTodayRe.ReplaceAllString(cleaned, "")
	}

	if trLatestRe.MatchString(cleaned) || enLatestRe.MatchString(cleaned) {
		f.latest = true
		cleaned = trLatestRe.ReplaceAllString(cleaned, "")
		cleaned = enLatestRe.ReplaceAllString(cleaned, "")
	}

	f.cleaned = strings.Join(strings.Fields(cleaned), " ")
	return f
}

func trUnitDays(unit string) int {
	switch strings.ToLower(unit) {
	case "gün":
		return 1
	case "hafta":
		return 7
	case "ay":
		return 30
	case "yıl":
		return 365
	}
	return 1
}

func enUnitDays(unit string) int {
	unit = strings.ToLower(strings.TrimSuffix(unit, "s"))
	switch unit {
	case "day":
		return 1
	case "week":
		return 7
	case "month":
		return 30
	case "year":
		return 365
	}
	return 1
}

func relativeStart(now time.Time, countStr string, unitDays int) time.Time {
	var n int
	fmt.Sscanf(countStr, "%d", &n)
	if n <= 0 {
		n = 1
	}
	return now.AddDate(0, 0, -n*unitDays)
}

func detectLanguage(s string) string {
	if strings.ContainsAny(s, turkishRunes) {
		return "tr"
	}
	return "en"
}

// Ask runs the three passes of spec §4.I.
func (e *Engine) Ask(ctx context.Context, req Request) (Response, error) {
	lang := req.Language
	f := parseInline(req.Query)
	if lang == "" {
		lang = detectLanguage(req.Query)
	}

	opt := retrieve.Options{
		Query:          f.cleaned,
		Limit:          10,
		Language:       lang,
		OrderByRecency: f.latest,
	}
	if len(f.tags) > 0 {
		opt.Tags = f.tags
	}
	if len(f.from) > 0 {
		// §4.H has no dedicated sender parameter for free-text search; fold
		// the sender tokens back into the lexical query so bm25 picks them up.
		opt.Query = strings.TrimSpace(opt.Query + " " + strings.Join(f.from, " "))
	}
	if f.dateFrom != nil {
		opt.DateFrom = f.dateFrom
	}
	if f.dateTo != nil {
		opt.DateTo = f.dateTo
	}

	result, err := e.retriever.Search(ctx, opt)
	if err != nil {
		return Response{}, fmt.Errorf("ask retrieve: %w", err)
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeSummary
	}

	if len(result.Hits) == 0 {
		return Response{
			Answer:  noMatchSentence(lang),
			UsedIDs: []string{},
			Sources: []Source{},
			Format:  string(mode),
		}, nil
	}

	maxSentences := req.MaxSentences
	if maxSentences <= 0 {
		maxSentences = 5
	}

	switch mode {
	case ModeEmail:
		return e.synthesizeEmail(ctx, result, lang)
	default:
		return e.synthesizeSummary(ctx, result, lang, maxSentences)
	}
}

func noMatchSentence(lang string) string {
	if lang == "tr" {
		return "Eşleşen belge bulunamadı."
	}
	return "No matching documents were found."
}

func (e *Engine) synthesizeSummary(ctx context.Context, result retrieve.Response, lang string, maxSentences int) (Response, error) {
	var used []string
	var sources []Source
	var blocks strings.Builder
	for i, h := range result.Hits {
		used = append(used, h.ID)
		sources = append(sources, Source{ID: h.ID, Title: h.Title, URL: h.SourceURL})
		fmt.Fprintf(&blocks, "[%d] %s\n%s\n\n", i+1, h.Title, h.Snippet)
	}

	langName := "English"
	if lang == "tr" {
		langName = "Turkish"
	}
	system := fmt.Sprintf("Summarize the following documents in %s. Use at most %d sentences.", langName, maxSentences)

	text, ok := e.chat.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: blocks.String()},
	}, llm.ChatOptions{Temperature: 0.2, MaxTokens: 400})
	if !ok {
		text = fallbackSummary(result.Hits, lang)
	}
	text = capSentences(text, maxSentences)

	return Response{Answer: text, UsedIDs: used, Sources: sources, Format: string(ModeSummary)}, nil
}

func fallbackSummary(hits []retrieve.Hit, lang string) string {
	var b strings.Builder
	if lang == "tr" {
		b.WriteString("Bulunan belgeler: ")
	} else {
		b.WriteString("Documents found: ")
	}
	titles := make([]string, 0, len(hits))
	for _, h := range hits {
		titles = append(titles, h.Title)
	}
	b.WriteString(strings.Join(titles, "; "))
	b.WriteString(".")
	return b.String()
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]\s+`)

func capSentences(text string, n int) string {
	parts := sentenceSplitRe.Split(strings.TrimSpace(text), -1)
	if len(parts) <= n {
		return text
	}
	return strings.Join(parts[:n], ". ") + "."
}

var subjectTagRe = regexp.MustCompile(`(?is)SUBJECT:\s*(.*?)\n`)
var bodyTagRe = regexp.MustCompile(`(?is)BODY:\s*(.*)`)

func (e *Engine) synthesizeEmail(ctx context.Context, result retrieve.Response, lang string) (Response, error) {
	var used []string
	var sources []Source
	var blocks strings.Builder
	for i, h := range result.Hits {
		used = append(used, h.ID)
		sources = append(sources, Source{ID: h.ID, Title: h.Title, URL: h.SourceURL})
		fmt.Fprintf(&blocks, "[%d] %s\n%s\n\n", i+1, h.Title, h.Snippet)
	}

	system := "Draft a reply email based on the documents below. Respond with exactly:\nSUBJECT: ...\nBODY: ..."
	if lang == "tr" {
		system = "Aşağıdaki belgelere dayanarak bir yanıt e-postası taslağı hazırla. Tam olarak şu biçimde yanıtla:\nSUBJECT: ...\nBODY: ..."
	}

	text, ok := e.chat.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: blocks.String()},
	}, llm.ChatOptions{Temperature: 0.3, MaxTokens: 500})

	subjectHint := ""
	if len(result.Hits) > 0 {
		subjectHint = result.Hits[0].Title
	}

	var subject, body string
	if ok {
		if m := subjectTagRe.FindStringSubmatch(text); len(m) == 2 {
			subject = strings.TrimSpace(m[1])
		}
		if m := bodyTagRe.FindStringSubmatch(text); len(m) == 2 {
			body = strings.TrimSpace(m[1])
		}
		if subject == "" && body == "" {
			body = strings.TrimSpace(text)
		}
	}
	if subject == "" {
		subject = subjectHint
	}
	if body == "" {
		body = templatedGreeting(lang)
	}

	return Response{
		UsedIDs: used,
		Sources: sources,
		Subject: subject,
		Body:    body,
		Format:  string(ModeEmail),
	}, nil
}

func templatedGreeting(lang string) string {
	if lang == "tr" {
		return "Merhaba,\n\nTalebinizle ilgileniyoruz.\n\nSaygılarımızla."
	}
	return "Hello,\n\nWe're looking into your request.\n\nBest regards."
}
