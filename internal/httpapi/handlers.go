package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/s4birli/MindVault/internal/vault/ask"
	"github.com/s4birli/MindVault/internal/vault/embedclient"
	"github.com/s4birli/MindVault/internal/vault/ingest"
	"github.com/s4birli/MindVault/internal/vault/retrieve"
	"github.com/s4birli/MindVault/internal/vaulterr"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "env": s.env})
}

// ingestPayload is one raw ingest request body, per spec §6's shape.
type ingestPayload struct {
	Provider    string         `json:"provider"`
	AccountID   string         `json:"account_id"`
	Kind        string         `json:"kind"`
	ExternalID  string         `json:"external_id"`
	Subject     string         `json:"subject"`
	PlainText   string         `json:"plain_text"`
	From        string         `json:"from"`
	TS          string         `json:"ts"`
	SourceURL   string         `json:"source_url"`
	Tags        []string       `json:"tags"`
	ContentHash string         `json:"content_hash"`
	Metadata    map[string]any `json:"metadata"`
}

// decodeIngestItems collapses the three input shapes spec §9 names (single
// object, {items: [...]}, raw array) into one list.
func decodeIngestItems(body []byte) ([]ingestPayload, error) {
	var wrapped struct {
		Items []ingestPayload `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items, nil
	}
	var list []ingestPayload
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var single ingestPayload
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []ingestPayload{single}, nil
}

func (s *Server) handleIngestGmail(w http.ResponseWriter, r *http.Request) {
	body := readAll(r)
	items, err := decodeIngestItems(body)
	if err != nil {
		respondVaultErr(w, vaulterr.ClientInput("invalid_json", err))
		return
	}
	if len(items) == 0 {
		respondVaultErr(w, vaulterr.ClientInput("empty_body", errors.New("no items")))
		return
	}

	// the representative route ingests one document per spec §6; additional
	// items in a batch payload are accepted and ingested in order.
	var last ingest.Response
	for _, item := range items {
		req := ingest.Request{
			Provider:    firstNonEmpty(item.Provider, "gmail"),
			AccountID:   item.AccountID,
			Kind:        item.Kind,
			ExternalID:  item.ExternalID,
			Subject:     item.Subject,
			PlainText:   item.PlainText,
			FromAddr:    item.From,
			RawDate:     item.TS,
			SourceURL:   item.SourceURL,
			Tags:        item.Tags,
			ContentHash: item.ContentHash,
			Metadata:    item.Metadata,
		}
		resp, err := s.ingestor.Ingest(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, ingest.ErrEmptyBody):
				respondVaultErr(w, vaulterr.ClientInput("empty_body", err))
			case errors.Is(err, embedclient.ErrUpstreamAuth):
				respondVaultErr(w, vaulterr.UpstreamAuth(err))
			case errors.Is(err, embedclient.ErrUpstreamTransient):
				respondVaultErr(w, vaulterr.UpstreamTransient(err))
			default:
				respondVaultErr(w, vaulterr.Store(err))
			}
			return
		}
		last = resp
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ok":          last.OK,
		"document_id": last.DocumentID,
		"dedup":       last.Dedup,
		"n_chunks":    last.NChunks,
		"tags":        last.Tags,
		"lang":        last.Lang,
	})
}

func (s *Server) handleIngestGmailExists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hash := q.Get("hash")
	accountID := q.Get("account_id")
	global := q.Get("global_search") == "true"

	if hash == "" {
		respondVaultErr(w, vaulterr.ClientInput("missing_hash", errors.New("hash is required")))
		return
	}
	if !global && accountID == "" {
		respondVaultErr(w, vaulterr.ClientInput("missing_account_id", errors.New("account_id is required unless global_search=true")))
		return
	}

	_, found, err := s.store.ExistsByContentHash(r.Context(), accountID, hash, global)
	if err != nil {
		respondVaultErr(w, vaulterr.Store(err))
		return
	}
	if !found {
		respondVaultErr(w, vaulterr.NotFound("content_hash_not_found"))
		return
	}
	w.WriteHeader(http.StatusOK)
}

type searchPayload struct {
	Query     string   `json:"query"`
	Limit     int      `json:"limit"`
	Offset    int      `json:"offset"`
	Tags      []string `json:"tags"`
	BoostTags []string `json:"boost_tags"`
	DateFrom  string   `json:"date_from"`
	DateTo    string   `json:"date_to"`
	Language  string   `json:"language"`
	DecayDays int      `json:"decay_days"`
	Highlight bool     `json:"highlight"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var p searchPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondVaultErr(w, vaulterr.ClientInput("invalid_json", err))
		return
	}

	opt := retrieve.Options{
		Query:     p.Query,
		Limit:     p.Limit,
		Offset:    p.Offset,
		Tags:      p.Tags,
		BoostTags: p.BoostTags,
		Language:  p.Language,
		DecayDays: p.DecayDays,
		Highlight: p.Highlight,
	}
	if t, ok := parseTime(p.DateFrom); ok {
		opt.DateFrom = &t
	}
	if t, ok := parseTime(p.DateTo); ok {
		opt.DateTo = &t
	}

	resp, err := s.retriever.Search(r.Context(), opt)
	if err != nil {
		respondVaultErr(w, vaulterr.Store(err))
		return
	}

	hits := make([]map[string]any, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		hits = append(hits, map[string]any{
			"id":         h.ID,
			"title":      h.Title,
			"preview":    h.Preview,
			"ts":         h.TS.Format(time.RFC3339),
			"provider":   h.Provider,
			"source_url": h.SourceURL,
			"score":      h.Score,
			"snippet":    h.Snippet,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"hits":        hits,
		"total":       resp.Total,
		"has_more":    resp.HasMore,
		"next_offset": resp.NextOffset,
	})
}

type askPayload struct {
	Query        string `json:"query"`
	Language     string `json:"language"`
	Mode         string `json:"mode"`
	MaxSentences int    `json:"max_sentences"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var p askPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondVaultErr(w, vaulterr.ClientInput("invalid_json", err))
		return
	}
	if strings.TrimSpace(p.Query) == "" {
		respondVaultErr(w, vaulterr.ClientInput("empty_query", errors.New("query must not be empty")))
		return
	}

	resp, err := s.ask.Ask(r.Context(), ask.Request{
		Query:        p.Query,
		Language:     p.Language,
		Mode:         ask.Mode(p.Mode),
		MaxSentences: p.MaxSentences,
	})
	if err != nil {
		respondVaultErr(w, vaulterr.Store(err))
		return
	}

	sources := make([]map[string]any, 0, len(resp.Sources))
	for _, src := range resp.Sources {
		sources = append(sources, map[string]any{"id": src.ID, "title": src.Title, "url": src.URL})
	}
	out := map[string]any{
		"answer":   resp.Answer,
		"used_ids": resp.UsedIDs,
		"sources":  sources,
	}
	if resp.Format != "" {
		out["format"] = resp.Format
	}
	if resp.Subject != "" {
		out["subject"] = resp.Subject
	}
	if resp.Body != "" {
		out["body"] = resp.Body
	}
	respondJSON(w, http.StatusOK, out)
}

type agentActPayload struct {
	Text   string         `json:"text"`
	Params map[string]any `json:"params"`
}

func (s *Server) handleAgentAct(w http.ResponseWriter, r *http.Request) {
	var p agentActPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondVaultErr(w, vaulterr.ClientInput("invalid_json", err))
		return
	}

	decision := s.router.Route(r.Context(), p.Text, p.Params)
	if decision.Intent == "" {
		respondJSON(w, http.StatusOK, map[string]any{
			"intent":      nil,
			"params_used": decision.Params,
			"result":      map[string]any{"message": "No matching agent in this step."},
		})
		return
	}

	result, err := s.agents.Dispatch(r.Context(), decision.Intent, decision.Params)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"intent":      decision.Intent,
			"params_used": decision.Params,
			"result":      map[string]any{"error": err.Error()},
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"intent":      decision.Intent,
		"params_used": decision.Params,
		"result":      result,
	})
}

func (s *Server) handleItemsExternal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	provider := q.Get("source_type")
	if provider == "" {
		provider = q.Get("provider")
	}
	accountID := q.Get("origin_source")
	externalID := q.Get("external_id")

	id, found, err := s.store.ExistsByExternalID(r.Context(), provider, accountID, externalID, accountID == "")
	if err != nil {
		respondVaultErr(w, vaulterr.Store(err))
		return
	}
	if !found {
		respondJSON(w, http.StatusNotFound, map[string]any{"external_id": externalID, "found": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"external_id": externalID, "found": true, "item_id": id})
}

func parseTime(s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func readAll(r *http.Request) []byte {
	defer r.Body.Close()
	body, _ := io.ReadAll(r.Body)
	return body
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondVaultErr(w http.ResponseWriter, err *vaulterr.Error) {
	respondJSON(w, err.Kind.HTTPStatus(), map[string]any{"error": err.Code})
}
