// Command interview-orchestrator is the HTTP entry point for the Session
// Orchestrator (component C5): it serves the session lifecycle API and mints
// room credentials, but never itself joins a realtime voice session — that
// is cmd/interview-agent's job.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"go.opentelemetry.io/otel"

	"github.com/hirecoach/interviewcore/internal/aiservice"
	"github.com/hirecoach/interviewcore/internal/aiservice/promptbank"
	"github.com/hirecoach/interviewcore/internal/config"
	"github.com/hirecoach/interviewcore/internal/finalizer"
	"github.com/hirecoach/interviewcore/internal/health"
	"github.com/hirecoach/interviewcore/internal/observe"
	"github.com/hirecoach/interviewcore/internal/orchestrator"
	"github.com/hirecoach/interviewcore/internal/resilience"
	"github.com/hirecoach/interviewcore/pkg/broker"
	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/provider/llm/anyllm"
	"github.com/hirecoach/interviewcore/pkg/provider/llm/openai"
	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/store/memstore"
	"github.com/hirecoach/interviewcore/pkg/store/postgres"
)

// shutdownTimeout bounds graceful HTTP server shutdown.
const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "interview-orchestrator: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "interview-orchestrator: %v\n", err)
		}
		return 1
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(slogLevel(cfg.Server.LogLevel))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})))

	slog.Info("interview-orchestrator starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := config.NewWatcher(*configPath, func(old, updated *config.Config) {
		d := config.Diff(old, updated)
		if d.LogLevelChanged {
			levelVar.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level hot-reloaded", "new_level", d.NewLogLevel)
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled, hot-reload unavailable", "err", err)
	} else {
		defer watcher.Stop()
	}

	st, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open session store", "err", err)
		return 1
	}
	defer st.Close()

	brk, err := buildBroker(cfg)
	if err != nil {
		slog.Error("failed to build broker", "err", err)
		return 1
	}

	registry := buildRegistry()
	llmProvider, err := resolveLLMProvider(registry, cfg.Providers.LLM)
	if err != nil {
		slog.Error("failed to build llm provider", "err", err)
		return 1
	}

	bank, err := promptbank.Load(cfg.Agent.QuestionBankPath)
	if err != nil {
		slog.Error("failed to load question bank", "err", err)
		return 1
	}

	fbCfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  3,
			ResetTimeout: 30 * time.Second,
			HalfOpenMax:  1,
		},
	}
	planner := aiservice.NewPlanner(llmProvider, bank, fbCfg)
	evaluator := aiservice.NewEvaluator(llmProvider, bank, fbCfg)
	summarizer := aiservice.NewSummarizer(llmProvider, fbCfg)
	fin := finalizer.New(st, summarizer)

	if brk.Configured() {
		if err := brk.DeclareDispatchRule(ctx, "interview-*"); err != nil {
			slog.Warn("failed to declare agent dispatch rule", "err", err)
		}
	}

	srv := orchestrator.New(st, brk, planner, evaluator, fin)

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "interview-orchestrator"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer otelShutdown(context.Background())

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}

	mux := http.NewServeMux()
	srv.Routes(mux)

	healthHandler := health.New(
		health.Checker{Name: "store", Check: st.Ping},
		health.Checker{Name: "broker", Check: func(context.Context) error {
			if !brk.Configured() {
				return fmt.Errorf("broker not configured, sessions will degrade to text-only")
			}
			return nil
		}},
	)
	healthHandler.Register(mux)

	handler := observe.Middleware(metrics)(mux)

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready — listening", "addr", cfg.Server.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping…")
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "err", err)
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildStore selects memstore or postgres based on whether cfg.Store.URL is set.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.URL == "" {
		slog.Info("no STORAGE_URL configured, using in-memory store")
		return memstore.New(), nil
	}
	st, err := postgres.NewStore(ctx, cfg.Store.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres store: %w", err)
	}
	return st, nil
}

// buildBroker selects LiveKitBroker or Unconfigured based on whether
// cfg.Broker.URL is set.
func buildBroker(cfg *config.Config) (broker.Broker, error) {
	if cfg.Broker.URL == "" {
		slog.Info("no BROKER_URL configured, sessions will degrade to text-only")
		return broker.Unconfigured{}, nil
	}
	b, err := broker.NewLiveKitBroker(cfg.Broker.URL, cfg.Broker.APIKey, cfg.Broker.APISecret)
	if err != nil {
		return nil, fmt.Errorf("construct livekit broker: %w", err)
	}
	return b, nil
}

// buildRegistry populates a [config.Registry] with every LLM provider
// constructor this binary knows how to build. cfg.Providers.LLM.Name selects
// the entry at startup; unknown names surface as [config.ErrProviderNotRegistered].
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
	r.RegisterLLM("deepseek", func(entry config.ProviderEntry) (llm.Provider, error) {
		return anyllm.NewDeepSeek(modelOrDefault(entry, "gpt-4o"))
	})
	r.RegisterLLM("mistral", func(entry config.ProviderEntry) (llm.Provider, error) {
		return anyllm.NewMistral(modelOrDefault(entry, "gpt-4o"))
	})
	r.RegisterLLM("groq", func(entry config.ProviderEntry) (llm.Provider, error) {
		return anyllm.NewGroq(modelOrDefault(entry, "gpt-4o"))
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

// resolveLLMProvider looks entry up in registry, defaulting an empty name to
// "openai". Names the registry has no factory for fall through to any-llm-go's
// generic constructor, which accepts any provider name its own registry
// understands (anthropic, gemini, ollama, and more besides the ones this
// binary special-cases above).
func resolveLLMProvider(registry *config.Registry, entry config.ProviderEntry) (llm.Provider, error) {
	if entry.Name == "" {
		entry.Name = "openai"
	}
	provider, err := registry.CreateLLM(entry)
	if err == nil {
		return provider, nil
	}
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		return nil, err
	}
	opts := []anyllmlib.Option{}
	if entry.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
	}
	if entry.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
	}
	return anyllm.New(entry.Name, modelOrDefault(entry, "gpt-4o"), opts...)
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
