// Package config provides the configuration schema, loader, and provider
// registry for the interview session core.
package config

// Config is the root configuration structure for the interview orchestrator
// and agent processes. It is typically loaded from a YAML file using [Load]
// or [LoadFromReader], then layered with environment variable overrides via
// [ApplyEnvOverrides].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Agent     AgentConfig     `yaml:"agent"`
	Providers ProvidersConfig `yaml:"providers"`
	Store     StoreConfig     `yaml:"store"`
	Broker    BrokerConfig    `yaml:"broker"`
}

// ServerConfig holds network and logging settings for the HTTP orchestrator.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Valid values: "debug", "info", "warn", "error".
	LogLevel LogLevel `yaml:"log_level"`
}

// LogLevel names a slog verbosity level accepted in configuration.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is one of the recognised log levels.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	default:
		return false
	}
}

// AgentConfig holds the settings that shape an interview agent's behaviour
// once it has joined a room. These are the values §6's environment variables
// and the static YAML topology both feed into.
type AgentConfig struct {
	// SnapshotIntervalSeconds is how often the agent persists its in-memory
	// transcript via PersistPartialTranscript. Overridden by
	// SNAPSHOT_INTERVAL_SECONDS.
	SnapshotIntervalSeconds int `yaml:"snapshot_interval_seconds"`

	// ClosingPhrases is the substring list used by completion detection to
	// recognise the interviewer model's own closing remark (matched against
	// assistant utterances). Overridden wholesale by
	// AGENT_CLOSING_PHRASES (a comma-separated list).
	ClosingPhrases []string `yaml:"closing_phrases"`

	// QuestionBankPath points at the YAML file backing the Planner's static
	// fallback question bank.
	QuestionBankPath string `yaml:"question_bank_path"`
}

// ProvidersConfig declares which provider implementation to use for each AI
// service adapter. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	LLM      ProviderEntry `yaml:"llm"`
	Realtime ProviderEntry `yaml:"realtime"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "anyllm").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o", "gemini-2.0-flash").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// StoreConfig configures the session store backend. An empty URL selects the
// in-memory [memstore] implementation; a "postgres://" URL selects the
// Postgres-backed store.
type StoreConfig struct {
	// URL is the storage connection string. Overridden by STORAGE_URL.
	URL string `yaml:"url"`
}

// BrokerConfig configures the transport broker adapter. An empty URL selects
// the Unconfigured broker, which degrades sessions to text-only mode.
type BrokerConfig struct {
	// URL is the broker's HTTP API base address. Overridden by BROKER_URL.
	URL string `yaml:"url"`

	// APIKey is the broker API key used for JWT signing/authentication.
	// Overridden by BROKER_API_KEY.
	APIKey string `yaml:"api_key"`

	// APISecret is the broker API secret used for JWT signing.
	// Overridden by BROKER_API_SECRET.
	APISecret string `yaml:"api_secret"`
}
