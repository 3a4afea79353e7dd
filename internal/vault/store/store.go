// Package store implements spec §4.C: the relational+vector persistence
// layer for sources, documents, chunks, and tags. The ingestor writes a
// document with its tags, chunks and embeddings inside a single transaction
// opened with Store.WithTx; its source upsert and content-hash lookup run on
// the pool before that transaction. Grounded in the teacher's postgres_search.go table-bootstrap
// and upsert conventions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s4birli/MindVault/internal/vault/model"
)

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("store: not found")

// pgxPool is satisfied by both *pgxpool.Pool and pgx.Tx, letting every
// operation below run either directly against the pool or inside a
// transaction without duplicating SQL.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the top-level, pool-backed document store.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and bootstraps the schema. MaxConnLifetime is set to
// 300s and health checks enabled, approximating pool_pre_ping/pool_recycle.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConnLifetime = 300 * time.Second
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := bootstrap(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() { s.pool.Close() }

// Pool exposes the raw pool for the retriever's hybrid SQL query, which
// spans tables this package owns but whose scoring formula is the
// retriever's responsibility, not the store's.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Tx is a document store bound to one transaction.
type Tx struct{ tx pgx.Tx }

// WithTx runs fn inside a single transaction, committing on success and
// rolling back on any error or panic, per spec §4.G/§4.C's atomicity
// requirement.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpsertSource upserts a source by (provider, account_id) and returns its id.
func (s *Store) UpsertSource(ctx context.Context, provider, accountID string) (string, error) {
	return upsertSource(ctx, s.pool, provider, accountID)
}

func (t *Tx) UpsertSource(ctx context.Context, provider, accountID string) (string, error) {
	return upsertSource(ctx, t.tx, provider, accountID)
}

func upsertSource(ctx context.Context, q pgxPool, provider, accountID string) (string, error) {
	id := uuid.NewString()
	row := q.QueryRow(ctx, `
INSERT INTO sources (id, provider, account_id) VALUES ($1, $2, $3)
ON CONFLICT (provider, account_id) DO UPDATE SET provider = EXCLUDED.provider
RETURNING id`, id, provider, accountID)
	var gotID string
	if err := row.Scan(&gotID); err != nil {
		return "", fmt.Errorf("upsert source: %w", err)
	}
	return gotID, nil
}

// FindByContentHash implements the early-dedup lookup of spec §4.G step 4.
func (s *Store) FindByContentHash(ctx context.Context, sourceID, contentHash string) (string, bool, error) {
	return findByContentHash(ctx, s.pool, sourceID, contentHash)
}

func (t *Tx) FindByContentHash(ctx context.Context, sourceID, contentHash string) (string, bool, error) {
	return findByContentHash(ctx, t.tx, sourceID, contentHash)
}

func findByContentHash(ctx context.Context, q pgxPool, sourceID, contentHash string) (string, bool, error) {
	var id string
	err := q.QueryRow(ctx, `
SELECT id FROM documents WHERE source_id = $1 AND content_hash = $2`, sourceID, contentHash).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find by content hash: %w", err)
	}
	return id, true, nil
}

// UpsertDocument upserts a document by (source_id, external_id); on
// conflict it updates title/preview/body/ts/url/metadata/content_hash, per
// spec §4.G step 5.
func (t *Tx) UpsertDocument(ctx context.Context, d model.Document) (string, error) {
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	md, err := json.Marshal(d.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	row := t.tx.QueryRow(ctx, `
INSERT INTO documents (id, source_id, kind, external_id, title, preview, plain_text, ts, source_url, metadata, content_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (source_id, external_id) DO UPDATE SET
	title = EXCLUDED.title,
	preview = EXCLUDED.preview,
	plain_text = EXCLUDED.plain_text,
	ts = EXCLUDED.ts,
	source_url = EXCLUDED.source_url,
	metadata = EXCLUDED.metadata,
	content_hash = EXCLUDED.content_hash
RETURNING id`,
		id, d.SourceID, d.Kind, d.ExternalID, d.Title, d.Preview, d.PlainText, d.TS, d.SourceURL, md, d.ContentHash)
	var gotID string
	if err := row.Scan(&gotID); err != nil {
		return "", fmt.Errorf("upsert document: %w", err)
	}
	return gotID, nil
}

// ReplaceChunks deletes any existing chunks for documentID and inserts the
// given ones, per spec §4.G step 7.
func (t *Tx) ReplaceChunks(ctx context.Context, documentID string, chunks []model.Chunk) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	for _, c := range chunks {
		if _, err := t.tx.Exec(ctx, `
INSERT INTO document_chunks (document_id, ord, text, embedding) VALUES ($1, $2, $3, $4)`,
			documentID, c.Ord, c.Text, vectorLiteral(c.Embedding)); err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.Ord, err)
		}
	}
	return nil
}

// SetDocumentEmbedding updates a document's mean vector.
func (t *Tx) SetDocumentEmbedding(ctx context.Context, documentID string, embedding []float32) error {
	_, err := t.tx.Exec(ctx, `UPDATE documents SET embedding = $2 WHERE id = $1`, documentID, vectorLiteral(embedding))
	if err != nil {
		return fmt.Errorf("set document embedding: %w", err)
	}
	return nil
}

// AttachTags upserts tags and the document_tags join rows.
func (t *Tx) AttachTags(ctx context.Context, documentID string, tags []string) error {
	tags = model.NormalizeTags(tags)
	for _, name := range tags {
		var tagID int64
		row := t.tx.QueryRow(ctx, `
INSERT INTO tags (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`, name)
		if err := row.Scan(&tagID); err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}
		if _, err := t.tx.Exec(ctx, `
INSERT INTO document_tags (document_id, tag_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, documentID, tagID); err != nil {
			return fmt.Errorf("attach tag %q: %w", name, err)
		}
	}
	return nil
}

// GetByID fetches one document by id, ignoring soft-deleted rows.
func (s *Store) GetByID(ctx context.Context, id string) (model.Document, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, source_id, kind, external_id, title, preview, plain_text, ts, source_url, metadata, content_hash, deleted_at
FROM documents WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanDocument(row)
}

// GetByIDs fetches documents by id list, ordered newest-first, ignoring
// soft-deleted rows and unknown ids.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]model.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
SELECT id, source_id, kind, external_id, title, preview, plain_text, ts, source_url, metadata, content_hash, deleted_at
FROM documents WHERE id = ANY($1) AND deleted_at IS NULL ORDER BY ts DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("get by ids: %w", err)
	}
	defer rows.Close()
	var out []model.Document
	for rows.Next() {
		d, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ExistsByExternalID implements the /items/external existence probe.
func (s *Store) ExistsByExternalID(ctx context.Context, provider, accountID, externalID string, global bool) (string, bool, error) {
	var (
		row pgx.Row
	)
	if global {
		row = s.pool.QueryRow(ctx, `
SELECT d.id FROM documents d
JOIN sources s ON s.id = d.source_id
WHERE s.provider = $1 AND d.external_id = $2 AND d.deleted_at IS NULL
LIMIT 1`, provider, externalID)
	} else {
		row = s.pool.QueryRow(ctx, `
SELECT d.id FROM documents d
JOIN sources s ON s.id = d.source_id
WHERE s.provider = $1 AND s.account_id = $2 AND d.external_id = $3 AND d.deleted_at IS NULL
LIMIT 1`, provider, accountID, externalID)
	}
	var id string
	err := row.Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("exists by external id: %w", err)
	}
	return id, true, nil
}

// ExistsByContentHash implements the /ingest/gmail/exists dedup probe: a
// document with this content hash exists for the gmail source scoped to
// accountID, or anywhere when global is true.
func (s *Store) ExistsByContentHash(ctx context.Context, accountID, hash string, global bool) (string, bool, error) {
	var row pgx.Row
	if global {
		row = s.pool.QueryRow(ctx, `
SELECT id FROM documents WHERE content_hash = $1 AND deleted_at IS NULL
LIMIT 1`, hash)
	} else {
		var sourceID string
		err := s.pool.QueryRow(ctx, `
SELECT id FROM sources WHERE provider = 'gmail' AND account_id = $1`, accountID).Scan(&sourceID)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("exists by content hash: find source: %w", err)
		}
		row = s.pool.QueryRow(ctx, `
SELECT id FROM documents WHERE source_id = $1 AND content_hash = $2 AND deleted_at IS NULL
LIMIT 1`, sourceID, hash)
	}
	var id string
	err := row.Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("exists by content hash: %w", err)
	}
	return id, true, nil
}

// SoftDelete marks a document deleted. Every read path, the existence
// probes included, filters on deleted_at IS NULL and so skips it.
func (s *Store) SoftDelete(ctx context.Context, documentID string) error {
	_, err := s.pool.Exec(ctx, `UPDATE documents SET deleted_at = now() WHERE id = $1`, documentID)
	return err
}

func scanDocument(row pgx.Row) (model.Document, error) {
	var d model.Document
	var md []byte
	var deletedAt *time.Time
	if err := row.Scan(&d.ID, &d.SourceID, &d.Kind, &d.ExternalID, &d.Title, &d.Preview, &d.PlainText, &d.TS, &d.SourceURL, &md, &d.ContentHash, &deletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Document{}, ErrNotFound
		}
		return model.Document{}, fmt.Errorf("scan document: %w", err)
	}
	d.DeletedAt = deletedAt
	if len(md) > 0 {
		_ = json.Unmarshal(md, &d.Metadata)
	}
	return d, nil
}

func scanDocumentRows(rows pgx.Rows) (model.Document, error) {
	var d model.Document
	var md []byte
	var deletedAt *time.Time
	if err := rows.Scan(&d.ID, &d.SourceID, &d.Kind, &d.ExternalID, &d.Title, &d.Preview, &d.PlainText, &d.TS, &d.SourceURL, &md, &d.ContentHash, &deletedAt); err != nil {
		return model.Document{}, fmt.Errorf("scan document: %w", err)
	}
	d.DeletedAt = deletedAt
	if len(md) > 0 {
		_ = json.Unmarshal(md, &d.Metadata)
	}
	return d, nil
}

// vectorLiteral formats a float32 slice as a pgvector literal string, or
// nil when the embedding is empty (document seeded without chunks).
func vectorLiteral(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
