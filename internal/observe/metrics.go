// Package observe provides application-wide observability primitives for the
// interview session core: OpenTelemetry metrics, distributed tracing,
// structured logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. [InitProvider]
// installs a Prometheus exporter bridge as the meter provider's reader; this
// package does not register a /metrics HTTP handler. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/hirecoach/interviewcore"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per adapter stage ---

	// LLMDuration tracks LLM completion latency (Planner/Evaluator/Summarizer
	// calls into pkg/provider/llm).
	LLMDuration metric.Float64Histogram

	// RealtimeDuration tracks end-to-end speech-to-speech session setup and
	// per-turn latency against pkg/provider/realtime.
	RealtimeDuration metric.Float64Histogram

	// EvaluatorDuration tracks internal/aiservice's answer-evaluation latency.
	EvaluatorDuration metric.Float64Histogram

	// SummarizerDuration tracks internal/aiservice's session-summary latency.
	SummarizerDuration metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// AgentTurns counts committed interview-agent utterances. Use with attribute:
	//   attribute.String("role", ...)
	AgentTurns metric.Int64Counter

	// FallbackInvocations counts every time a resilience.FallbackGroup routed
	// a call away from its primary provider. Use with attributes:
	//   attribute.String("service", ...), attribute.String("fallback", ...)
	FallbackInvocations metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of interview sessions currently in a
	// non-terminal status.
	ActiveSessions metric.Int64UpDownCounter

	// ActiveAgents tracks the number of interview agent processes currently
	// connected to a broker room.
	ActiveAgents metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for voice-pipeline and LLM-adapter latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.LLMDuration, err = m.Float64Histogram("interviewcore.llm.duration",
		metric.WithDescription("Latency of LLM completion calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RealtimeDuration, err = m.Float64Histogram("interviewcore.realtime.duration",
		metric.WithDescription("End-to-end speech-to-speech session latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EvaluatorDuration, err = m.Float64Histogram("interviewcore.evaluator.duration",
		metric.WithDescription("Latency of answer evaluation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SummarizerDuration, err = m.Float64Histogram("interviewcore.summarizer.duration",
		metric.WithDescription("Latency of session summarization."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("interviewcore.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.AgentTurns, err = m.Int64Counter("interviewcore.agent.turns",
		metric.WithDescription("Total committed interview-agent utterances by role."),
	); err != nil {
		return nil, err
	}
	if met.FallbackInvocations, err = m.Int64Counter("interviewcore.fallback.invocations",
		metric.WithDescription("Total times a fallback group routed away from its primary provider."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("interviewcore.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("interviewcore.active_sessions",
		metric.WithDescription("Number of interview sessions currently in a non-terminal status."),
	); err != nil {
		return nil, err
	}
	if met.ActiveAgents, err = m.Int64UpDownCounter("interviewcore.active_agents",
		metric.WithDescription("Number of interview agent processes currently connected to a room."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("interviewcore.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordProviderRequest is a convenience method that records a provider
// request counter increment with the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordAgentTurn is a convenience method that records a committed
// interview-agent utterance.
func (m *Metrics) RecordAgentTurn(ctx context.Context, role string) {
	m.AgentTurns.Add(ctx, 1,
		metric.WithAttributes(attribute.String("role", role)),
	)
}

// RecordFallbackInvocation is a convenience method that records a fallback
// routing event for a named adapter service (e.g. "llm.planner", "llm.evaluator").
func (m *Metrics) RecordFallbackInvocation(ctx context.Context, service, fallback string) {
	m.FallbackInvocations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", service),
			attribute.String("fallback", fallback),
		),
	)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
