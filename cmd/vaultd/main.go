// Command vaultd is the process entrypoint: it loads configuration, wires
// every vault component, and serves the HTTP surface with graceful
// shutdown on SIGINT/SIGTERM, mirroring the teacher's cmd/agentd/cmd/orchestrator
// wiring-then-serve style.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/s4birli/MindVault/internal/config"
	"github.com/s4birli/MindVault/internal/httpapi"
	"github.com/s4birli/MindVault/internal/llm/factory"
	"github.com/s4birli/MindVault/internal/llm/openai"
	"github.com/s4birli/MindVault/internal/objectstore"
	"github.com/s4birli/MindVault/internal/observability"
	"github.com/s4birli/MindVault/internal/vault/agents"
	"github.com/s4birli/MindVault/internal/vault/ask"
	"github.com/s4birli/MindVault/internal/vault/chatclient"
	"github.com/s4birli/MindVault/internal/vault/chunk"
	"github.com/s4birli/MindVault/internal/vault/embedclient"
	"github.com/s4birli/MindVault/internal/vault/ingest"
	"github.com/s4birli/MindVault/internal/vault/retrieve"
	"github.com/s4birli/MindVault/internal/vault/router"
	"github.com/s4birli/MindVault/internal/vault/store"
	"github.com/s4birli/MindVault/internal/vault/tagextract"
)

func main() {
	_ = godotenv.Load()
	observability.InitLogger("", "info")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownOTel, err := observability.InitOTel(ctx, cfg.Obs)
	if err != nil {
		log.Warn().Err(err).Msg("otel init failed, continuing without observability")
		shutdownOTel = nil
	}
	if shutdownOTel != nil {
		defer func() { _ = shutdownOTel(context.Background()) }()
	}

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open document store")
	}
	defer st.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	rawArchive, err := buildObjectStore(ctx, cfg.S3)
	if err != nil {
		log.Warn().Err(err).Msg("object store init failed, raw payload archiving disabled")
		rawArchive = nil
	}

	var embedProvider embedclient.Provider
	if !cfg.Embedding.LocalEmbed && cfg.OpenAI.APIKey != "" {
		embedProvider = openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	}
	embed := embedclient.New(cfg.Embedding, embedProvider, redisClient)
	embed.Warmup(ctx)

	chatProvider, err := factory.Build(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("chat provider unavailable, ask/tag/router fall back to heuristics")
	}
	chat := chatclient.New(chatProvider)

	tagger := tagextract.New(chat, cfg.Tags.Model, cfg.Tags.TextBudget)
	chunkOpts := chunk.Options{
		TargetChars:  cfg.Chunking.TargetChars,
		OverlapChars: cfg.Chunking.OverlapChars,
		MinJoinChars: cfg.Chunking.MinJoinChars,
		MinKeepChars: cfg.Chunking.MinKeepChars,
	}

	ingestor := ingest.New(st, embed, tagger, chunkOpts, rawArchive)
	retriever := retrieve.New(st.Pool(), embed)
	asker := ask.New(retriever, chat)

	registry := agents.NewRegistry()
	registry.Register("search.latest_from", agents.NewSearchLatestFrom(st))
	registry.Register("search.find", agents.NewSearchFind(retriever))
	registry.Register("search.summarize", agents.NewSearchSummarize(st, chat))

	intentRouter := router.New(chat, cfg.Models.Intent, registry.Names())

	server := httpapi.NewServer(httpapi.Deps{
		Store:     st,
		Ingestor:  ingestor,
		Retriever: retriever,
		Ask:       asker,
		Agents:    registry,
		Router:    intentRouter,
		Env: map[string]any{
			"environment": cfg.Obs.Environment,
			"chat":        chat.Available(),
		},
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("vaultd listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func buildObjectStore(ctx context.Context, cfg config.S3Config) (objectstore.ObjectStore, error) {
	if cfg.Bucket == "" {
		return objectstore.NewMemoryStore(), nil
	}
	return objectstore.NewS3Store(ctx, cfg)
}
