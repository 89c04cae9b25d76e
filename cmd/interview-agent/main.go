// Command interview-agent is the realtime voice entry point for the
// Interview Agent (component C4). One process instance handles exactly one
// session: the transport broker's dispatch rule spawns an instance per room,
// and the session id is communicated via the SESSION_ID environment
// variable (the same id embedded in the room name by [broker.RoomName]).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hirecoach/interviewcore/internal/agent"
	"github.com/hirecoach/interviewcore/internal/aiservice"
	"github.com/hirecoach/interviewcore/internal/config"
	"github.com/hirecoach/interviewcore/internal/finalizer"
	"github.com/hirecoach/interviewcore/internal/resilience"
	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/provider/llm/anyllm"
	"github.com/hirecoach/interviewcore/pkg/provider/llm/openai"
	"github.com/hirecoach/interviewcore/pkg/provider/realtime"
	realtimegemini "github.com/hirecoach/interviewcore/pkg/provider/realtime/gemini"
	realtimeopenai "github.com/hirecoach/interviewcore/pkg/provider/realtime/openai"
	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/store/memstore"
	"github.com/hirecoach/interviewcore/pkg/store/postgres"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "interview-agent: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "interview-agent: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	sessionID := os.Getenv("SESSION_ID")
	if sessionID == "" {
		slog.Error("SESSION_ID environment variable is required")
		return 1
	}

	slog.Info("interview-agent starting", "session_id", sessionID, "config", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open session store", "err", err)
		return 1
	}
	defer st.Close()

	session, err := st.GetSession(ctx, sessionID)
	if err != nil {
		slog.Error("failed to load session", "session_id", sessionID, "err", err)
		return 1
	}

	registry := buildRegistry()
	llmEntry := cfg.Providers.LLM
	if llmEntry.Name == "" {
		llmEntry.Name = "openai"
	}
	llmProvider, err := registry.CreateLLM(llmEntry)
	if err != nil {
		slog.Error("failed to build llm provider", "err", err)
		return 1
	}

	realtimeEntry := cfg.Providers.Realtime
	if realtimeEntry.Name == "" {
		realtimeEntry.Name = "openai-realtime"
	}
	realtimeProvider, err := registry.CreateRealtime(realtimeEntry)
	if err != nil {
		slog.Error("failed to build realtime provider", "err", err)
		return 1
	}

	fbCfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  3,
			ResetTimeout: 30 * time.Second,
			HalfOpenMax:  1,
		},
	}
	summarizer := aiservice.NewSummarizer(llmProvider, fbCfg)
	fin := finalizer.New(st, summarizer)

	snapshotInterval := time.Duration(cfg.Agent.SnapshotIntervalSeconds) * time.Second

	a := agent.New(agent.Config{
		SessionID:        sessionID,
		JobTitle:         session.JobTitle,
		Seniority:        session.Seniority,
		NumQuestions:     session.NumQuestions,
		ClosingPhrases:   cfg.Agent.ClosingPhrases,
		SnapshotInterval: snapshotInterval,
	}, realtimeProvider, fin)

	// disconnect never fires on its own in this single-session process model;
	// the broker's own room-leave signal is out of scope for the realtime
	// provider abstraction (see broker.LiveKitBroker.RoomEvents), so SIGTERM
	// via ctx cancellation is this process's sole shutdown path.
	disconnect := make(chan struct{})

	if err := a.Run(ctx, disconnect); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("agent run error", "session_id", sessionID, "err", err)
		return 1
	}

	slog.Info("interview-agent finished", "session_id", sessionID)
	return 0
}

// buildStore selects memstore or postgres based on whether cfg.Store.URL is set.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.URL == "" {
		return memstore.New(), nil
	}
	st, err := postgres.NewStore(ctx, cfg.Store.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres store: %w", err)
	}
	return st, nil
}

// buildRegistry mirrors cmd/interview-orchestrator's provider wiring; the
// agent process needs its own LLM provider instance to back the Summarizer
// inside its Finalizer, plus the realtime provider it actually joins a voice
// session with.
func buildRegistry() *config.Registry {
	r := config.NewRegistry()
	r.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		model := entry.Model
		if model == "" {
			model = "gpt-4o"
		}
		if entry.APIKey != "" {
			return openai.New(entry.APIKey, model)
		}
		return anyllm.NewOpenAI(model)
	})
	r.RegisterLLM("anthropic", func(entry config.ProviderEntry) (llm.Provider, error) {
		return anyllm.NewAnthropic(modelOrDefault(entry, "gpt-4o"))
	})
	r.RegisterLLM("gemini", func(entry config.ProviderEntry) (llm.Provider, error) {
		return anyllm.NewGemini(modelOrDefault(entry, "gpt-4o"))
	})
	r.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		return anyllm.NewOllama(modelOrDefault(entry, "gpt-4o"))
	})

	r.RegisterRealtime("openai-realtime", func(entry config.ProviderEntry) (realtime.Provider, error) {
		if entry.APIKey == "" {
			return nil, fmt.Errorf("realtime provider %q requires an api_key", entry.Name)
		}
		opts := []realtimeopenai.Option{}
		if entry.Model != "" {
			opts = append(opts, realtimeopenai.WithModel(entry.Model))
		}
		return realtimeopenai.New(entry.APIKey, opts...), nil
	})
	r.RegisterRealtime("gemini-live", func(entry config.ProviderEntry) (realtime.Provider, error) {
		if entry.APIKey == "" {
			return nil, fmt.Errorf("realtime provider %q requires an api_key", entry.Name)
		}
		opts := []realtimegemini.Option{}
		if entry.Model != "" {
			opts = append(opts, realtimegemini.WithModel(entry.Model))
		}
		return realtimegemini.New(entry.APIKey, opts...), nil
	})
	return r
}

// modelOrDefault falls back to def when entry.Model is unset.
func modelOrDefault(entry config.ProviderEntry, def string) string {
	if entry.Model == "" {
		return def
	}
	return entry.Model
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
