package config_test

import (
	"strings"
	"testing"

	"github.com/hirecoach/interviewcore/internal/config"
)

func TestValidate_UnknownLLMProviderWarnsOnly(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  llm:
    name: some-custom-backend
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error for unknown (but harmless) provider name: %v", err)
	}
}

func TestValidate_BrokerWithFullCredentialsIsValid(t *testing.T) {
	t.Parallel()
	yaml := `
broker:
  url: https://broker.example.com
  api_key: key
  api_secret: secret
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_BrokerMissingAPISecret(t *testing.T) {
	t.Parallel()
	yaml := `
broker:
  url: https://broker.example.com
  api_key: key
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for broker url without api_secret, got nil")
	}
}

func TestValidate_NoBrokerConfiguredIsValid(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyEnvOverrides_LLMAndBroker(t *testing.T) {
	t.Setenv("STORAGE_URL", "postgres://env/db")
	t.Setenv("BROKER_URL", "https://env-broker.example.com")
	t.Setenv("BROKER_API_KEY", "env-key")
	t.Setenv("BROKER_API_SECRET", "env-secret")
	t.Setenv("LLM_PROVIDER", "anyllm")
	t.Setenv("LLM_MODEL", "claude-3")
	t.Setenv("SNAPSHOT_INTERVAL_SECONDS", "45")
	t.Setenv("AGENT_CLOSING_PHRASES", "that's it, nothing more")

	cfg, err := config.LoadFromReader(strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.URL != "postgres://env/db" {
		t.Errorf("store.url: got %q", cfg.Store.URL)
	}
	if cfg.Broker.URL != "https://env-broker.example.com" {
		t.Errorf("broker.url: got %q", cfg.Broker.URL)
	}
	if cfg.Providers.LLM.Name != "anyllm" {
		t.Errorf("providers.llm.name: got %q", cfg.Providers.LLM.Name)
	}
	if cfg.Providers.LLM.Model != "claude-3" {
		t.Errorf("providers.llm.model: got %q", cfg.Providers.LLM.Model)
	}
	if cfg.Agent.SnapshotIntervalSeconds != 45 {
		t.Errorf("agent.snapshot_interval_seconds: got %d, want 45", cfg.Agent.SnapshotIntervalSeconds)
	}
	if len(cfg.Agent.ClosingPhrases) != 2 {
		t.Fatalf("agent.closing_phrases: got %d, want 2", len(cfg.Agent.ClosingPhrases))
	}
}

func TestApplyEnvOverrides_AbsentLeavesYAMLUntouched(t *testing.T) {
	yaml := `
providers:
  llm:
    name: openai
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.LLM.Name != "openai" {
		t.Errorf("providers.llm.name: got %q, want openai (no env override set)", cfg.Providers.LLM.Name)
	}
}

func TestValidProviderNames(t *testing.T) {
	t.Parallel()
	// Sanity-check that the map is populated.
	if len(config.ValidProviderNames) == 0 {
		t.Fatal("ValidProviderNames should not be empty")
	}
	llmNames := config.ValidProviderNames["llm"]
	if len(llmNames) == 0 {
		t.Fatal("ValidProviderNames[\"llm\"] should not be empty")
	}
	// Check that "openai" is in the LLM list.
	found := false
	for _, n := range llmNames {
		if n == "openai" {
			found = true
			break
		}
	}
	if !found {
		t.Error("ValidProviderNames[\"llm\"] should contain \"openai\"")
	}
}
