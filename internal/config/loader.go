package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":      {"openai", "anyllm"},
	"realtime": {"openai-realtime", "gemini-live"},
}

// Load reads the YAML configuration file at path, applies environment
// overrides, and returns a validated [Config]. It is a convenience wrapper
// around [LoadFromReader], [ApplyEnvOverrides], and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, layers environment overrides
// on top, and validates the result. Useful in tests where configs are
// constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides layers the §6 environment variables on top of cfg,
// in-place. Absence of an env var leaves the YAML-configured (or zero) value
// untouched; this is also what selects between a primary provider and its
// fallback/degraded counterpart elsewhere in the system — the env var's
// presence or absence is read once here, at startup.
func ApplyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("STORAGE_URL"); ok {
		cfg.Store.URL = v
	}
	if v, ok := os.LookupEnv("BROKER_URL"); ok {
		cfg.Broker.URL = v
	}
	if v, ok := os.LookupEnv("BROKER_API_KEY"); ok {
		cfg.Broker.APIKey = v
	}
	if v, ok := os.LookupEnv("BROKER_API_SECRET"); ok {
		cfg.Broker.APISecret = v
	}
	if v, ok := os.LookupEnv("LLM_PROVIDER"); ok {
		cfg.Providers.LLM.Name = v
	}
	if v, ok := os.LookupEnv("LLM_MODEL"); ok {
		cfg.Providers.LLM.Model = v
	}
	if v, ok := os.LookupEnv("LLM_API_KEY"); ok {
		cfg.Providers.LLM.APIKey = v
	}
	if v, ok := os.LookupEnv("LLM_TEMPERATURE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			if cfg.Providers.LLM.Options == nil {
				cfg.Providers.LLM.Options = make(map[string]any)
			}
			cfg.Providers.LLM.Options["temperature"] = f
		} else {
			slog.Warn("config: LLM_TEMPERATURE is not a valid float, ignoring", "value", v)
		}
	}
	if v, ok := os.LookupEnv("REALTIME_API_KEY"); ok {
		cfg.Providers.Realtime.APIKey = v
	}
	if v, ok := os.LookupEnv("REALTIME_VOICE"); ok {
		if cfg.Providers.Realtime.Options == nil {
			cfg.Providers.Realtime.Options = make(map[string]any)
		}
		cfg.Providers.Realtime.Options["voice"] = v
	}
	if v, ok := os.LookupEnv("SNAPSHOT_INTERVAL_SECONDS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Agent.SnapshotIntervalSeconds = n
		} else {
			slog.Warn("config: SNAPSHOT_INTERVAL_SECONDS is not a valid integer, ignoring", "value", v)
		}
	}
	if v, ok := os.LookupEnv("AGENT_CLOSING_PHRASES"); ok {
		var phrases []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				phrases = append(phrases, p)
			}
		}
		if len(phrases) > 0 {
			cfg.Agent.ClosingPhrases = phrases
		}
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("realtime", cfg.Providers.Realtime.Name)

	// Provider availability warnings
	if cfg.Providers.LLM.Name == "" {
		slog.Warn("no LLM provider configured; interviews will run entirely on heuristic fallbacks")
	}
	if cfg.Providers.Realtime.Name == "" {
		slog.Warn("no realtime provider configured; conversational-mode sessions will be unavailable")
	}

	// Store availability
	if cfg.Store.URL == "" {
		slog.Warn("store.url is empty; falling back to the in-memory session store")
	}

	// Broker availability
	if cfg.Broker.URL == "" {
		slog.Warn("broker.url is empty; sessions will degrade to text-only mode")
	}
	if cfg.Broker.URL != "" && (cfg.Broker.APIKey == "" || cfg.Broker.APISecret == "") {
		errs = append(errs, errors.New("broker.url is set but broker.api_key/broker.api_secret are missing"))
	}

	// Agent
	if cfg.Agent.SnapshotIntervalSeconds < 0 {
		errs = append(errs, fmt.Errorf("agent.snapshot_interval_seconds %d must be >= 0", cfg.Agent.SnapshotIntervalSeconds))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	for _, k := range known {
		if k == name {
			return
		}
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
