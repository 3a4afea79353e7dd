// Package config centralizes environment-driven configuration for the vault
// service: database DSN, embedding/chat provider credentials, chunking and
// retry knobs, and the optional raw-payload object store.
package config

// EmbeddingConfig configures the embedding provider used by internal/vault/embedclient.
type EmbeddingConfig struct {
	Model      string // EMBED_MODEL
	Dim        int    // EMBED_DIM
	Batch      int    // EMBED_BATCH
	RetryMax   int    // RETRY_MAX
	RetryBase  float64 // RETRY_BASE_SLEEP, seconds
	LocalEmbed bool   // LOCAL_EMBED: allow deterministic pseudo-vectors
}

// ChatConfig configures the chat completion provider.
type ChatConfig struct {
	Provider string // "openai" | "anthropic"
}

// OpenAIConfig holds OpenAI client settings.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

// AnthropicConfig holds Anthropic client settings.
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
}

// ChunkingConfig mirrors §4.E of the retrieval spec.
type ChunkingConfig struct {
	TargetChars  int // CHUNK_TARGET_CHARS
	OverlapChars int // CHUNK_OVERLAP_CHARS
	MinJoinChars int // CHUNK_MIN_JOIN_CHARS
	MinKeepChars int // CHUNK_MIN_KEEP_CHARS
}

// TagConfig configures the tag extractor.
type TagConfig struct {
	Enabled    bool   // ENABLE_OAI_TAGS
	Model      string // TAG_MODEL
	TextBudget int    // TAG_TEXT_BUDGET
}

// ModelsConfig holds the per-step chat model names read from the
// environment. The chat providers in internal/llm always request their own
// default model, so these values do not change which model answers.
type ModelsConfig struct {
	Intent  string // INTENT_MODEL
	AskChat string // ASK_CHAT_MODEL
	Summary string // SUMMARY_MODEL
}

// S3SSEConfig configures server-side encryption for the raw payload store.
type S3SSEConfig struct {
	Mode     string // "", "sse-s3", "sse-kms"
	KMSKeyID string
}

// S3Config configures the optional object store used to retain raw ingested
// payloads for audit/replay. When Bucket is empty the in-memory store is used.
type S3Config struct {
	Bucket                string
	Region                string
	Endpoint              string
	Prefix                string
	AccessKey             string
	SecretKey             string
	UsePathStyle          bool
	TLSInsecureSkipVerify bool
	SSE                   S3SSEConfig
}

// RedisConfig configures the embedding-cache and embedding-warmup latch.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ObsConfig configures observability (logging + OpenTelemetry).
type ObsConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLP           string // optional OTLP collector endpoint
}

// Config is the fully resolved process configuration.
type Config struct {
	DatabaseURL string

	Embedding EmbeddingConfig
	Chat      ChatConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Chunking  ChunkingConfig
	Tags      TagConfig
	Models    ModelsConfig
	S3        S3Config
	Redis     RedisConfig
	Obs       ObsConfig

	LogLevel string
	HTTPAddr string
}
