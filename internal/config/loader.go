package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads configuration from the environment, applying the same defaults
// documented in the system's environment variable table. A .env file in the
// working directory, if present, is loaded first but never overrides values
// already set in the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:    firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
		HTTPAddr:    firstNonEmpty(strings.TrimSpace(os.Getenv("HTTP_ADDR")), ":8080"),
	}

	model := firstNonEmpty(strings.TrimSpace(os.Getenv("EMBED_MODEL")), "text-embedding-3-small")
	dim := intFromEnv("EMBED_DIM", defaultEmbedDim(model))
	cfg.Embedding = EmbeddingConfig{
		Model:      model,
		Dim:        dim,
		Batch:      intFromEnv("EMBED_BATCH", 64),
		RetryMax:   intFromEnv("RETRY_MAX", 3),
		RetryBase:  floatFromEnv("RETRY_BASE_SLEEP", 1.0),
		LocalEmbed: boolFromEnv("LOCAL_EMBED", false),
	}

	cfg.OpenAI = OpenAIConfig{
		APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
	}
	cfg.Anthropic = AnthropicConfig{
		APIKey:  strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		BaseURL: strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL")),
	}
	cfg.Chat = ChatConfig{
		Provider: strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("CHAT_PROVIDER")), "openai")),
	}

	cfg.Chunking = ChunkingConfig{
		TargetChars:  intFromEnv("CHUNK_TARGET_CHARS", 1200),
		OverlapChars: intFromEnv("CHUNK_OVERLAP_CHARS", 150),
		MinJoinChars: intFromEnv("CHUNK_MIN_JOIN_CHARS", 120),
		MinKeepChars: intFromEnv("CHUNK_MIN_KEEP_CHARS", 20),
	}

	cfg.Tags = TagConfig{
		Enabled:    boolFromEnv("ENABLE_OAI_TAGS", true),
		Model:      firstNonEmpty(strings.TrimSpace(os.Getenv("TAG_MODEL")), "gpt-4o-mini"),
		TextBudget: intFromEnv("TAG_TEXT_BUDGET", 2000),
	}

	cfg.Models = ModelsConfig{
		Intent:  firstNonEmpty(strings.TrimSpace(os.Getenv("INTENT_MODEL")), "gpt-4o-mini"),
		AskChat: firstNonEmpty(strings.TrimSpace(os.Getenv("ASK_CHAT_MODEL")), "gpt-4o-mini"),
		Summary: firstNonEmpty(strings.TrimSpace(os.Getenv("SUMMARY_MODEL")), "gpt-4o-mini"),
	}

	cfg.S3 = S3Config{
		Bucket:                strings.TrimSpace(os.Getenv("VAULT_S3_BUCKET")),
		Region:                firstNonEmpty(strings.TrimSpace(os.Getenv("VAULT_S3_REGION")), "us-east-1"),
		Endpoint:              strings.TrimSpace(os.Getenv("VAULT_S3_ENDPOINT")),
		Prefix:                strings.TrimSpace(os.Getenv("VAULT_S3_PREFIX")),
		AccessKey:             strings.TrimSpace(os.Getenv("VAULT_S3_ACCESS_KEY")),
		SecretKey:             strings.TrimSpace(os.Getenv("VAULT_S3_SECRET_KEY")),
		UsePathStyle:          boolFromEnv("VAULT_S3_PATH_STYLE", false),
		TLSInsecureSkipVerify: boolFromEnv("VAULT_S3_TLS_INSECURE", false),
	}

	cfg.Redis = RedisConfig{
		Addr:     firstNonEmpty(strings.TrimSpace(os.Getenv("REDIS_ADDR")), "localhost:6379"),
		Password: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		DB:       intFromEnv("REDIS_DB", 0),
	}

	cfg.Obs = ObsConfig{
		ServiceName:    firstNonEmpty(strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")), "vault"),
		ServiceVersion: firstNonEmpty(strings.TrimSpace(os.Getenv("OTEL_SERVICE_VERSION")), "dev"),
		Environment:    firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "development"),
		OTLP:           strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	return cfg, nil
}

// defaultEmbedDim mirrors the provider's fixed dimensionality per model name;
// text-embedding-3-large forces 3072, everything else defaults to 1536.
func defaultEmbedDim(model string) int {
	if strings.Contains(model, "3-large") {
		return 3072
	}
	return 1536
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func intFromEnv(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}
