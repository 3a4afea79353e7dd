package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LatestFromParams is the structured query accepted by the
// search.latest_from agent handler, per spec §4.L.
type LatestFromParams struct {
	Sender   string
	Domain   string
	Limit    int
	DateFrom *time.Time
	DateTo   *time.Time
}

// LatestFromItem is one result row.
type LatestFromItem struct {
	ID       string
	Title    string
	TS       *time.Time
	Provider string
	URL      string
}

// SearchLatestFrom matches sender against from_name/from_email/display_name
// metadata and ILIKE title/preview, and domain against source_url,
// from_email's @domain suffix, and an exact from_domain metadata match.
// Orders by ts DESC NULLS LAST.
func (s *Store) SearchLatestFrom(ctx context.Context, p LatestFromParams) ([]LatestFromItem, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}

	const sql = `
SELECT d.id, d.title, d.ts, s.provider, d.source_url
FROM documents d
JOIN sources s ON s.id = d.source_id
WHERE d.deleted_at IS NULL
	AND ($1::text = '' OR
		lower(coalesce(d.metadata->>'from_name', '')) LIKE '%' || $1 || '%' OR
		lower(coalesce(d.metadata->>'from_email', '')) LIKE '%' || $1 || '%' OR
		lower(coalesce(d.metadata->>'display_name', '')) LIKE '%' || $1 || '%' OR
		lower(d.title) LIKE '%' || $1 || '%' OR
		lower(d.preview) LIKE '%' || $1 || '%')
	AND ($2::text = '' OR
		lower(d.source_url) LIKE '%' || $2 || '%' OR
		lower(coalesce(d.metadata->>'from_email', '')) LIKE '%@' || $2 OR
		lower(coalesce(d.metadata->>'from_domain', '')) = $2)
	AND ($3::timestamptz IS NULL OR d.ts >= $3::timestamptz)
	AND ($4::timestamptz IS NULL OR d.ts <= $4::timestamptz)
ORDER BY d.ts DESC NULLS LAST
LIMIT $5`

	rows, err := s.pool.Query(ctx, sql, normalizeMatchArg(p.Sender), normalizeMatchArg(p.Domain), p.DateFrom, p.DateTo, limit)
	if err != nil {
		return nil, fmt.Errorf("search latest from: %w", err)
	}
	defer rows.Close()

	var out []LatestFromItem
	for rows.Next() {
		var it LatestFromItem
		if err := rows.Scan(&it.ID, &it.Title, &it.TS, &it.Provider, &it.URL); err != nil {
			return nil, fmt.Errorf("scan latest from row: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func normalizeMatchArg(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
