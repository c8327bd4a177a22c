// Package observe provides application-wide observability primitives for the
// kiosk: OpenTelemetry metrics, distributed tracing, structured logging, and
// HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] and served by
// [MetricsHandler] on the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all kiosk metrics.
const meterName = "github.com/MrWong99/courtkiosk"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per collaborator ---

	// STTDuration tracks capture plus transcription latency of one turn.
	STTDuration metric.Float64Histogram

	// TTSDuration tracks text-to-speech synthesis latency.
	TTSDuration metric.Float64Histogram

	// TranslateDuration tracks translation latency.
	TranslateDuration metric.Float64Histogram

	// LookupDuration tracks record store latency.
	LookupDuration metric.Float64Histogram

	// CaptionDrift tracks how late each caption word was revealed relative
	// to its schedule.
	CaptionDrift metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// DictationTurns counts dictation turns. Use with attributes:
	//   attribute.String("kind", ...), attribute.String("status", ...)
	DictationTurns metric.Int64Counter

	// Lookups counts record lookups. Use with attributes:
	//   attribute.String("source", ...), attribute.String("status", ...)
	Lookups metric.Int64Counter

	// Conversations counts finished conversations. Use with attribute:
	//   attribute.String("outcome", ...)
	Conversations metric.Int64Counter

	// PresenceFrames counts detector frames. Use with attributes:
	//   attribute.String("placement", ...), attribute.Bool("triggered", ...)
	PresenceFrames metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// CircuitTransitions counts provider circuit breaker state changes. Use
	// with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("state", ...)
	CircuitTransitions metric.Int64Counter

	// --- Gauges ---

	// ActiveConversations is 1 while the kiosk is talking to a visitor.
	ActiveConversations metric.Int64UpDownCounter

	// DisplayClients tracks connected caption display clients.
	DisplayClients metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// recognition, synthesis and lookup calls.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// driftBuckets covers timer scheduling jitter up to a second.
var driftBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("courtkiosk.stt.duration",
		metric.WithDescription("Latency of capturing and transcribing one answer."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("courtkiosk.tts.duration",
		metric.WithDescription("Latency of text-to-speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslateDuration, err = m.Float64Histogram("courtkiosk.translate.duration",
		metric.WithDescription("Latency of text translation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LookupDuration, err = m.Float64Histogram("courtkiosk.lookup.duration",
		metric.WithDescription("Latency of case record lookups."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CaptionDrift, err = m.Float64Histogram("courtkiosk.caption.drift",
		metric.WithDescription("Delay of caption word reveals behind their schedule."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(driftBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("courtkiosk.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.DictationTurns, err = m.Int64Counter("courtkiosk.dictation.turns",
		metric.WithDescription("Total dictation turns by kind and status."),
	); err != nil {
		return nil, err
	}
	if met.Lookups, err = m.Int64Counter("courtkiosk.lookups",
		metric.WithDescription("Total case record lookups by source and status."),
	); err != nil {
		return nil, err
	}
	if met.Conversations, err = m.Int64Counter("courtkiosk.conversations",
		metric.WithDescription("Total finished conversations by outcome."),
	); err != nil {
		return nil, err
	}
	if met.PresenceFrames, err = m.Int64Counter("courtkiosk.presence.frames",
		metric.WithDescription("Total presence detector frames by placement and trigger."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("courtkiosk.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.CircuitTransitions, err = m.Int64Counter("courtkiosk.provider.circuit_transitions",
		metric.WithDescription("Provider circuit breaker state changes by provider, kind, and new state."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveConversations, err = m.Int64UpDownCounter("courtkiosk.active_conversations",
		metric.WithDescription("Number of conversations in progress."),
	); err != nil {
		return nil, err
	}
	if met.DisplayClients, err = m.Int64UpDownCounter("courtkiosk.display_clients",
		metric.WithDescription("Number of connected caption display clients."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("courtkiosk.http.request.duration",
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

// RecordProviderRequest records a provider request counter increment with
// the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

// RecordCircuitTransition records a breaker entering state.
func (m *Metrics) RecordCircuitTransition(ctx context.Context, provider, kind, state string) {
	m.CircuitTransitions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("state", state),
		),
	)
}

// RecordDictationTurn records one dictation turn.
func (m *Metrics) RecordDictationTurn(ctx context.Context, kind, status string) {
	m.DictationTurns.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordLookup records one record lookup and its latency.
func (m *Metrics) RecordLookup(ctx context.Context, source, status string, d time.Duration) {
	m.Lookups.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("status", status),
		),
	)
	m.LookupDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("source", source)))
}

// RecordConversation records a finished conversation.
func (m *Metrics) RecordConversation(ctx context.Context, outcome string) {
	m.Conversations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordCaptionDrift records the lateness of one caption reveal.
func (m *Metrics) RecordCaptionDrift(ctx context.Context, drift time.Duration) {
	m.CaptionDrift.Record(ctx, drift.Seconds())
}

// RecordPresence records one presence detector frame.
func (m *Metrics) RecordPresence(ctx context.Context, placement string, triggered bool) {
	m.PresenceFrames.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("placement", placement),
			attribute.Bool("triggered", triggered),
		),
	)
}
