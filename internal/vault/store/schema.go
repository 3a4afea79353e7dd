package store

import "context"

// bootstrap creates the tables and indexes this package depends on if they
// do not already exist. It is best-effort and idempotent, mirroring the
// teacher's NewPostgresSearch bootstrap style.
func bootstrap(ctx context.Context, pool pgxPool) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE EXTENSION IF NOT EXISTS pg_trgm`,

		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			account_id TEXT NOT NULL,
			UNIQUE (provider, account_id)
		)`,

		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL REFERENCES sources(id),
			kind TEXT NOT NULL,
			external_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			preview TEXT NOT NULL DEFAULT '',
			plain_text TEXT NOT NULL DEFAULT '',
			ts TIMESTAMPTZ NOT NULL,
			source_url TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			content_hash TEXT NOT NULL,
			embedding vector(1536),
			deleted_at TIMESTAMPTZ,
			tsv tsvector GENERATED ALWAYS AS (
				setweight(to_tsvector('simple', coalesce(title,'')), 'A') ||
				setweight(to_tsvector('simple', coalesce(preview,'')), 'B') ||
				setweight(to_tsvector('simple', coalesce(plain_text,'')), 'C')
			) STORED,
			UNIQUE (source_id, external_id)
		)`,
		`CREATE INDEX IF NOT EXISTS documents_tsv_idx ON documents USING GIN (tsv)`,
		`CREATE INDEX IF NOT EXISTS documents_hash_idx ON documents (source_id, content_hash)`,
		`CREATE INDEX IF NOT EXISTS documents_ts_idx ON documents (ts DESC)`,

		`CREATE TABLE IF NOT EXISTS document_chunks (
			id BIGSERIAL PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			ord INT NOT NULL,
			text TEXT NOT NULL,
			embedding vector(1536),
			tsv tsvector GENERATED ALWAYS AS (to_tsvector('simple', coalesce(text,''))) STORED,
			UNIQUE (document_id, ord)
		)`,
		`CREATE INDEX IF NOT EXISTS document_chunks_tsv_idx ON document_chunks USING GIN (tsv)`,

		`CREATE TABLE IF NOT EXISTS tags (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			UNIQUE (name)
		)`,
		`CREATE TABLE IF NOT EXISTS document_tags (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (document_id, tag_id)
		)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
