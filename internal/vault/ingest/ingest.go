// Package ingest orchestrates spec §4.G's nine-step sequence: normalize,
// early-dedup, chunk, tag, embed, and commit. The source upsert and the
// early-dedup lookup run on the pool before the transaction opens; the
// document, tag, chunk and embedding writes run inside a single store
// transaction. Grounded in the teacher's rag/ingest idempotency+upsert
// sequencing, generalized to this spec's simpler skip-if-same-hash policy.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/s4birli/MindVault/internal/objectstore"
	"github.com/s4birli/MindVault/internal/vault/chunk"
	"github.com/s4birli/MindVault/internal/vault/embedclient"
	"github.com/s4birli/MindVault/internal/vault/model"
	"github.com/s4birli/MindVault/internal/vault/normalize"
	"github.com/s4birli/MindVault/internal/vault/store"
	"github.com/s4birli/MindVault/internal/vault/tagextract"
)

// ErrEmptyBody is the client-input error for step 1 of spec §4.G.
var ErrEmptyBody = fmt.Errorf("plain_text must not be empty")

// Request is one document to ingest.
type Request struct {
	Provider    string
	AccountID   string
	Kind        string // defaults to "email"
	ExternalID  string
	Subject     string
	PlainText   string
	FromAddr    string
	RawDate     string
	SourceURL   string
	Tags        []string
	ContentHash string // optional; computed when empty
	Metadata    map[string]any
}

// Response mirrors the /ingest/gmail wire shape.
type Response struct {
	OK         bool
	DocumentID string
	Dedup      bool
	NChunks    int
	Tags       []string
	Lang       string
}

// Ingestor wires together the normalizer, chunker, tag extractor, embedding
// client, document store, and optional raw-payload archive.
type Ingestor struct {
	store      *store.Store
	embed      *embedclient.Client
	tags       *tagextract.Extractor
	chunkOpts  chunk.Options
	rawArchive objectstore.ObjectStore // optional; nil disables archiving
}

// New constructs an Ingestor. rawArchive may be nil to disable the
// audit/replay payload store.
func New(st *store.Store, embed *embedclient.Client, tags *tagextract.Extractor, chunkOpts chunk.Options, rawArchive objectstore.ObjectStore) *Ingestor {
	return &Ingestor{store: st, embed: embed, tags: tags, chunkOpts: chunkOpts, rawArchive: rawArchive}
}

// Ingest runs spec §4.G for one document.
func (ing *Ingestor) Ingest(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.PlainText) == "" {
		return Response{}, ErrEmptyBody
	}
	kind := req.Kind
	if kind == "" {
		kind = "email"
	}

	norm := normalize.Normalize(req.Subject, req.PlainText, req.AccountID, req.ExternalID, req.FromAddr, req.RawDate)
	contentHash := req.ContentHash
	if contentHash == "" {
		contentHash = norm.ContentHash
	}

	sourceID, err := ing.store.UpsertSource(ctx, req.Provider, req.AccountID)
	if err != nil {
		return Response{}, fmt.Errorf("upsert source: %w", err)
	}

	if existingID, found, err := ing.store.FindByContentHash(ctx, sourceID, contentHash); err != nil {
		return Response{}, fmt.Errorf("dedup lookup: %w", err)
	} else if found {
		log.Ctx(ctx).Info().Str("document_id", existingID).Msg("ingest dedup short-circuit")
		return Response{OK: true, DocumentID: existingID, Dedup: true, NChunks: 0}, nil
	}

	if ing.rawArchive != nil {
		ing.archiveRaw(ctx, contentHash, req)
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	if norm.SenderDomain != "" {
		metadata["from_domain"] = norm.SenderDomain
	}
	if norm.Lang != "" {
		metadata["lang"] = norm.Lang
	}
	if norm.TSFallback {
		metadata["ts_fallback"] = true
	}

	preview := req.Subject
	if preview == "" && len([]rune(norm.CleanBody)) > 0 {
		r := []rune(norm.CleanBody)
		if len(r) > 200 {
			preview = string(r[:200])
		} else {
			preview = string(r)
		}
	}

	var (
		documentID string
		tags       []string
		nChunks    int
	)

	err = ing.store.WithTx(ctx, func(tx *store.Tx) error {
		id, err := tx.UpsertDocument(ctx, model.Document{
			SourceID:    sourceID,
			Kind:        kind,
			ExternalID:  req.ExternalID,
			Title:       req.Subject,
			Preview:     preview,
			PlainText:   norm.CleanBody,
			TS:          norm.TS,
			SourceURL:   req.SourceURL,
			Metadata:    metadata,
			ContentHash: contentHash,
		})
		if err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}
		documentID = id

		extracted := ing.tags.Extract(ctx, req.Subject, norm.CleanBody)
		tags = model.NormalizeTags(append(append([]string{}, req.Tags...), extracted...))
		if err := tx.AttachTags(ctx, id, tags); err != nil {
			return fmt.Errorf("attach tags: %w", err)
		}

		chunks := chunk.Dispatch(kind, req.Subject, norm.CleanBody, ing.chunkOpts)
		if len(chunks) > 0 {
			texts := make([]string, len(chunks))
			for i, c := range chunks {
				texts[i] = c.Text
			}
			vectors, err := ing.embed.EmbedBatch(ctx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks: %w", err)
			}
			modelChunks := make([]model.Chunk, len(chunks))
			for i, c := range chunks {
				modelChunks[i] = model.Chunk{DocumentID: id, Ord: c.Ord, Text: c.Text, Embedding: vectors[i]}
			}
			if err := tx.ReplaceChunks(ctx, id, modelChunks); err != nil {
				return fmt.Errorf("replace chunks: %w", err)
			}
			mean := embedclient.Mean(vectors)
			if err := tx.SetDocumentEmbedding(ctx, id, mean); err != nil {
				return fmt.Errorf("set document embedding: %w", err)
			}
			nChunks = len(chunks)
		} else {
			seed := req.Subject
			if seed == "" {
				seed = preview
			}
			if seed == "" {
				r := []rune(norm.CleanBody)
				if len(r) > 300 {
					seed = string(r[:300])
				} else {
					seed = string(r)
				}
			}
			vectors, err := ing.embed.EmbedBatch(ctx, []string{seed})
			if err != nil {
				return fmt.Errorf("embed seed: %w", err)
			}
			if err := tx.ReplaceChunks(ctx, id, nil); err != nil {
				return fmt.Errorf("clear chunks: %w", err)
			}
			if len(vectors) == 1 {
				if err := tx.SetDocumentEmbedding(ctx, id, vectors[0]); err != nil {
					return fmt.Errorf("set seed embedding: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return Response{}, err
	}

	return Response{OK: true, DocumentID: documentID, Dedup: false, NChunks: nChunks, Tags: tags, Lang: norm.Lang}, nil
}

// archiveRaw persists the as-received payload keyed by content hash, for
// audit and replay after a schema change. Failures are logged, never fatal.
func (ing *Ingestor) archiveRaw(ctx context.Context, contentHash string, req Request) {
	payload := fmt.Sprintf("SUBJECT: %s\n\n%s", req.Subject, req.PlainText)
	key := fmt.Sprintf("raw/%s/%s/%s.txt", req.Provider, req.AccountID, contentHash)
	if _, err := ing.rawArchive.Put(ctx, key, strings.NewReader(payload), objectstore.PutOptions{ContentType: "text/plain"}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("raw payload archive failed")
	}
}
