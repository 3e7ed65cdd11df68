// Package observe provides application-wide observability primitives for
// coinhop: OpenTelemetry metrics, tracing helpers, and HTTP middleware that
// ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped from the /metrics endpoint. Tests should use [NewMetrics] with a
// custom [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all coinhop metrics.
const meterName = "github.com/MrWong99/coinhop"

// Metrics holds all OpenTelemetry metric instruments for the application.
// The underlying OTel types handle their own synchronisation.
type Metrics struct {
	// NormalizeDuration tracks the latency of one normalize call.
	NormalizeDuration metric.Float64Histogram

	// Normalizations counts normalize calls. Use with attributes:
	//   attribute.String("language", ...), attribute.String("outcome", ...)
	Normalizations metric.Int64Counter

	// CommandsApplied counts commands handed to the game. Use with attributes:
	//   attribute.String("command", ...), attribute.String("status", ...)
	CommandsApplied metric.Int64Counter

	// CoinsCollected counts coin pickups.
	CoinsCollected metric.Int64Counter

	// SpeechDuration tracks speech recognition latency across all attempts.
	SpeechDuration metric.Float64Histogram

	// SpeechRequests counts recognition attempts. Use with attributes:
	//   attribute.String("backend", ...), attribute.String("status", ...)
	SpeechRequests metric.Int64Counter

	// BreakerTransitions counts circuit breaker state changes. Use with
	// attributes:
	//   attribute.String("backend", ...), attribute.String("to", ...)
	BreakerTransitions metric.Int64Counter

	// ActiveClients tracks the number of connected websocket clients.
	ActiveClients metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// normalizeBuckets are in seconds and sized for in-process text work.
var normalizeBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.1,
}

// speechBuckets are in seconds and sized for remote recognisers.
var speechBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.NormalizeDuration, err = m.Float64Histogram("coinhop.normalize.duration",
		metric.WithDescription("Latency of command normalization."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(normalizeBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SpeechDuration, err = m.Float64Histogram("coinhop.speech.duration",
		metric.WithDescription("Latency of speech recognition."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(speechBuckets...),
	); err != nil {
		return nil, err
	}

	if met.Normalizations, err = m.Int64Counter("coinhop.normalizations",
		metric.WithDescription("Total normalize calls by detected language and outcome."),
	); err != nil {
		return nil, err
	}
	if met.CommandsApplied, err = m.Int64Counter("coinhop.commands.applied",
		metric.WithDescription("Total commands applied to the game by command and status."),
	); err != nil {
		return nil, err
	}
	if met.CoinsCollected, err = m.Int64Counter("coinhop.coins.collected",
		metric.WithDescription("Total coins collected."),
	); err != nil {
		return nil, err
	}
	if met.SpeechRequests, err = m.Int64Counter("coinhop.speech.requests",
		metric.WithDescription("Total speech recognition attempts by backend and status."),
	); err != nil {
		return nil, err
	}
	if met.BreakerTransitions, err = m.Int64Counter("coinhop.breaker.transitions",
		metric.WithDescription("Total circuit breaker state changes by backend and target state."),
	); err != nil {
		return nil, err
	}

	if met.ActiveClients, err = m.Int64UpDownCounter("coinhop.active_clients",
		metric.WithDescription("Number of connected websocket clients."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("coinhop.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails, which does not happen with the global provider.
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

// RecordNormalization records one normalize call. outcome is "recognized" or
// "unrecognized".
func (m *Metrics) RecordNormalization(ctx context.Context, language string, recognized bool, d time.Duration) {
	outcome := "unrecognized"
	if recognized {
		outcome = "recognized"
	}
	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.String("outcome", outcome),
	)
	m.Normalizations.Add(ctx, 1, attrs)
	m.NormalizeDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordCommand records one command handed to the game.
func (m *Metrics) RecordCommand(ctx context.Context, command, status string) {
	m.CommandsApplied.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("status", status),
		),
	)
}

// RecordSpeech records one recognition attempt against a backend.
func (m *Metrics) RecordSpeech(ctx context.Context, backend, status string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	)
	m.SpeechRequests.Add(ctx, 1, attrs)
	m.SpeechDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordBreakerTransition records a circuit breaker moving to state to.
func (m *Metrics) RecordBreakerTransition(ctx context.Context, backend, to string) {
	m.BreakerTransitions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("to", to),
		),
	)
}
