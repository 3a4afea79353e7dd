// Package retrieve implements spec §4.H: the single SQL-driven hybrid
// ranking query combining BM25, cosine similarity, tag boosting, and linear
// time decay, grounded in the teacher's postgres_search.go query shape.
package retrieve

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/s4birli/MindVault/internal/vault/embedclient"
)

// DefaultDecayDays resolves the decay_days clamp inconsistency noted in
// spec §9(c) to a single retrieval-side ceiling. It is not the default:
// normalizeOptions turns an unset decay_days into 7.
const DefaultDecayDays = 30

// Options holds the parameters of one hybrid search request.
type Options struct {
	Query      string
	Limit      int
	Offset     int
	Tags       []string
	BoostTags  []string
	DateFrom   *time.Time
	DateTo     *time.Time
	Language   string // "tr", "en", "auto"
	DecayDays  int
	Highlight  bool
	// OrderByRecency sorts by ts DESC first instead of final DESC, used by
	// the ask engine's "latest" cue (spec §4.I step 3).
	OrderByRecency bool
}

// Hit is one ranked result.
type Hit struct {
	ID        string
	Title     string
	Preview   string
	TS        time.Time
	Provider  string
	SourceURL string
	Score     float64
	Snippet   string
}

// Response is the full paginated result of a search.
type Response struct {
	Hits       []Hit
	Total      int
	HasMore    bool
	NextOffset int
}

// Retriever executes the hybrid query against the document store's pool.
type Retriever struct {
	pool  *pgxpool.Pool
	embed *embedclient.Client
}

// New constructs a Retriever. embed may be nil; a nil or failing embed
// client degrades to BM25-only scoring, per spec's non-fatal fallback rule.
func New(pool *pgxpool.Pool, embed *embedclient.Client) *Retriever {
	return &Retriever{pool: pool, embed: embed}
}

// Search executes one hybrid ranking query.
func (r *Retriever) Search(ctx context.Context, opt Options) (Response, error) {
	opt = normalizeOptions(opt)

	regconfig := languageConfig(opt.Language, opt.Query)

	var qvec any
	if r.embed != nil && strings.TrimSpace(opt.Query) != "" {
		vecs, err := r.embed.EmbedBatch(ctx, []string{opt.Query})
		if err == nil && len(vecs) == 1 && len(vecs[0]) > 0 {
			qvec = vectorLiteral(vecs[0])
		}
		// query-embedding failure is non-fatal: qvec stays nil, falling back
		// to BM25-only scoring below.
	}

	var tagsFilter any
	if len(opt.Tags) > 0 {
		tagsFilter = opt.Tags
	}
	boostTags := opt.BoostTags
	if boostTags == nil {
		boostTags = []string{}
	}

	orderClause := "final DESC, ts DESC, length(plain_text) ASC"
	if opt.OrderByRecency {
		orderClause = "ts DESC, final DESC, length(plain_text) ASC"
	}

	sql := `
WITH candidates AS (
	SELECT d.id, d.title, d.preview, d.ts, d.source_url, s.provider, d.plain_text,
		ts_rank_cd(d.tsv, websearch_to_tsquery($2::regconfig, $1), 32) AS bm25,
		CASE WHEN $3::text IS NOT NULL AND d.embedding IS NOT NULL
			THEN GREATEST(0, 1 - (d.embedding <=> $3::vector))
			ELSE 0 END AS vec,
		CASE WHEN EXISTS (
			SELECT 1 FROM document_tags dt JOIN tags t ON t.id = dt.tag_id
			WHERE dt.document_id = d.id AND t.name = ANY($4::text[])
		) THEN 1.0 ELSE 0.0 END AS tag,
		GREATEST(0, 1 - EXTRACT(EPOCH FROM (now() - d.ts)) / (86400.0 * $5::int)) AS decay
	FROM documents d
	JOIN sources s ON s.id = d.source_id
	WHERE d.deleted_at IS NULL
		AND ($6::timestamptz IS NULL OR d.ts >= $6::timestamptz)
		AND ($7::timestamptz IS NULL OR d.ts <= $7::timestamptz)
		AND ($8::text[] IS NULL OR EXISTS (
			SELECT 1 FROM document_tags dt2 JOIN tags t2 ON t2.id = dt2.tag_id
			WHERE dt2.document_id = d.id AND t2.name = ANY($8::text[])
		))
),
scored AS (
	SELECT *, (0.55*bm25 + 0.35*vec + 0.07*tag + 0.03*decay) AS final
	FROM candidates
	WHERE bm25 > 0 OR vec > 0
),
deduped AS (
	SELECT DISTINCT ON (title, preview) *
	FROM scored
	ORDER BY title, preview, final DESC, ts DESC, length(plain_text) ASC
)
SELECT id, title, preview, ts, provider, source_url, final, plain_text,
	count(*) OVER () AS total
FROM deduped
ORDER BY ` + orderClause + `
LIMIT $9 OFFSET $10`

	rows, err := r.pool.Query(ctx, sql,
		opt.Query, regconfig, qvec, boostTags, opt.DecayDays,
		opt.DateFrom, opt.DateTo, tagsFilter, opt.Limit, opt.Offset)
	if err != nil {
		return Response{}, fmt.Errorf("hybrid search: %w", err)
	}
	defer rows.Close()

	var (
		hits  []Hit
		total int
	)
	for rows.Next() {
		var h Hit
		var score float64
		var plainText string
		if err := rows.Scan(&h.ID, &h.Title, &h.Preview, &h.TS, &h.Provider, &h.SourceURL, &score, &plainText, &total); err != nil {
			return Response{}, fmt.Errorf("scan hit: %w", err)
		}
		h.Score = coerceFinite(score)
		h.Snippet = h.Preview
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return Response{}, fmt.Errorf("hybrid search rows: %w", err)
	}

	if opt.Highlight {
		r.attachSnippets(ctx, hits, opt.Query, regconfig)
	}

	resp := Response{Hits: hits, Total: total}
	resp.HasMore = opt.Offset+len(hits) < total
	if resp.HasMore {
		resp.NextOffset = opt.Offset + len(hits)
	}
	return resp, nil
}

// attachSnippets replaces each hit's snippet with a ts_headline fragment,
// fetching them concurrently (bounded by errgroup.SetLimit) since each hit
// needs its own round trip. Failures fall back to the preview already set
// on the hit.
func (r *Retriever) attachSnippets(ctx context.Context, hits []Hit, query, regconfig string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range hits {
		i := i
		g.Go(func() error {
			var snip string
			err := r.pool.QueryRow(gctx, `
SELECT ts_headline($2::regconfig, plain_text, websearch_to_tsquery($2::regconfig, $3),
	'StartSel=<mark>,StopSel=</mark>')
FROM documents WHERE id = $1`, hits[i].ID, regconfig, query).Scan(&snip)
			if err == nil && snip != "" {
				hits[i].Snippet = snip
			}
			return nil
		})
	}
	_ = g.Wait()
}

func normalizeOptions(opt Options) Options {
	if opt.Limit <= 0 {
		opt.Limit = 10
	}
	if opt.Limit > 200 {
		opt.Limit = 200
	}
	if opt.Offset < 0 {
		opt.Offset = 0
	}
	if opt.DecayDays <= 0 {
		opt.DecayDays = 7
	}
	if opt.DecayDays > DefaultDecayDays {
		opt.DecayDays = DefaultDecayDays
	}
	return opt
}

const turkishRunes = "ıİğĞşŞöÖçÇüÜ"

// languageConfig maps the language option to a Postgres text-search config
// name, per spec's tr -> turkish_unaccent / en -> simple_unaccent mapping,
// with "auto" deciding from the query text's Turkish diacritics.
func languageConfig(lang, query string) string {
	switch lang {
	case "tr":
		return "turkish_unaccent"
	case "en":
		return "simple_unaccent"
	default:
		if strings.ContainsAny(query, turkishRunes) {
			return "turkish_unaccent"
		}
		return "simple_unaccent"
	}
}

// coerceFinite maps NaN/Inf scores to 0.0 per the wire-format requirement.
func coerceFinite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func vectorLiteral(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
