package agents

import (
	"context"
	"time"

	"github.com/s4birli/MindVault/internal/vault/store"
)

// NewSearchLatestFrom builds the search.latest_from handler of spec §4.L.
func NewSearchLatestFrom(st *store.Store) Handler {
	return func(ctx context.Context, params map[string]any) (map[string]any, error) {
		p := store.LatestFromParams{
			Sender: stringParam(params, "sender"),
			Domain: stringParam(params, "domain"),
			Limit:  intParam(params, "limit", 5),
		}
		if t, ok := timeParam(params, "date_from"); ok {
			p.DateFrom = &t
		}
		if t, ok := timeParam(params, "date_to"); ok {
			p.DateTo = &t
		}

		items, err := st.SearchLatestFrom(ctx, p)
		if err != nil {
			return nil, err
		}

		results := make([]map[string]any, 0, len(items))
		for _, it := range items {
			var ts string
			if it.TS != nil {
				ts = it.TS.Format(time.RFC3339)
			}
			results = append(results, map[string]any{
				"id":       it.ID,
				"title":    it.Title,
				"ts":       ts,
				"provider": it.Provider,
				"url":      it.URL,
			})
		}
		return map[string]any{"items": results}, nil
	}
}
