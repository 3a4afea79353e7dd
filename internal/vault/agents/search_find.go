package agents

import (
	"context"
	"time"

	"github.com/s4birli/MindVault/internal/vault/retrieve"
)

// NewSearchFind builds the search.find handler: the full hybrid retrieval
// of spec §4.H exposed as an agent.
func NewSearchFind(r *retrieve.Retriever) Handler {
	return func(ctx context.Context, params map[string]any) (map[string]any, error) {
		opt := retrieve.Options{
			Query:     stringParam(params, "query"),
			Limit:     intParam(params, "limit", 10),
			Offset:    intParam(params, "offset", 0),
			Tags:      stringSliceParam(params, "tags"),
			BoostTags: stringSliceParam(params, "boost_tags"),
			Language:  stringParam(params, "language"),
			DecayDays: intParam(params, "decay_days", 0),
			Highlight: boolParam(params, "highlight"),
		}
		if opt.Query == "" {
			opt.Query = joinKeywords(stringSliceParam(params, "keywords"))
		}
		if t, ok := timeParam(params, "date_from"); ok {
			opt.DateFrom = &t
		}
		if t, ok := timeParam(params, "date_to"); ok {
			opt.DateTo = &t
		}

		resp, err := r.Search(ctx, opt)
		if err != nil {
			return nil, err
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
		return map[string]any{
			"hits":        hits,
			"total":       resp.Total,
			"has_more":    resp.HasMore,
			"next_offset": resp.NextOffset,
		}, nil
	}
}

func joinKeywords(keywords []string) string {
	out := ""
	for i, k := range keywords {
		if i > 0 {
			out += " "
		}
		out += k
	}
	return out
}
