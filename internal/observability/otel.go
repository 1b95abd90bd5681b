// Package observability wires OpenTelemetry tracing and metrics for the
// ranking pipeline, with Prometheus, OTLP and console exporters selected
// by configuration.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"cvranker/internal/config"
)

// Metrics holds the pipeline's custom instruments.
type Metrics struct {
	CandidatesAnalyzed metric.Int64Counter
	AnalysisDuration   metric.Float64Histogram
	OverallScore       metric.Int64Histogram
	BelowThreshold     metric.Int64Counter
	OCRFallbacks       metric.Int64Counter
	RankRequests       metric.Int64Counter
	RateLimitHits      metric.Int64Counter
}

// Manager owns the OpenTelemetry providers and their shutdown.
type Manager struct {
	cfg            *config.ObservabilityConfig
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
}

// NewManager sets up tracing and metrics per configuration. A disabled
// manager is inert: Tracer returns a no-op and metrics are nil-safe.
func NewManager(cfg *config.ObservabilityConfig) (*Manager, error) {
	m := &Manager{cfg: cfg}
	if !cfg.Enabled {
		return m, nil
	}

	res, err := m.buildResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.Tracing.Enabled {
		if err := m.initTracing(res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}
	if cfg.Metrics.Enabled {
		if err := m.initMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Manager) buildResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.cfg.ServiceName),
			semconv.ServiceVersion(m.cfg.ServiceVersion),
		),
	)
}

func (m *Manager) initTracing(res *resource.Resource) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch {
	case m.cfg.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if m.cfg.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case m.cfg.OTLP.Enabled:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(m.cfg.OTLP.Endpoint)}
		if m.cfg.OTLP.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(m.cfg.OTLP.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(m.cfg.OTLP.Headers))
		}
		exporter, err = otlptracehttp.New(context.Background(), opts...)
	default:
		exporter = noopSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(m.cfg.Tracing.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics(res *resource.Resource) error {
	var readers []sdkmetric.Reader

	if m.cfg.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.cfg.Metrics.CollectionInterval)))
	}

	if m.cfg.OTLP.Enabled {
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(m.cfg.OTLP.Endpoint)}
		if m.cfg.OTLP.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(context.Background(), opts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.cfg.Metrics.CollectionInterval)))
	}

	if m.cfg.Prometheus.Enabled {
		reader, err := setupPrometheusReader()
		if err != nil {
			return err
		}
		readers = append(readers, reader)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	return m.initInstruments()
}

func (m *Manager) initInstruments() error {
	meter := m.meterProvider.Meter("cvranker")
	metrics := &Metrics{}
	var err error

	if metrics.CandidatesAnalyzed, err = meter.Int64Counter("cvranker.candidates.analyzed",
		metric.WithDescription("Candidates analyzed")); err != nil {
		return err
	}
	if metrics.AnalysisDuration, err = meter.Float64Histogram("cvranker.analysis.duration",
		metric.WithDescription("Per-candidate analysis duration"),
		metric.WithUnit("s")); err != nil {
		return err
	}
	if metrics.OverallScore, err = meter.Int64Histogram("cvranker.analysis.score",
		metric.WithDescription("Overall candidate scores")); err != nil {
		return err
	}
	if metrics.BelowThreshold, err = meter.Int64Counter("cvranker.analysis.below_threshold",
		metric.WithDescription("Candidates tripping hard filters")); err != nil {
		return err
	}
	if metrics.OCRFallbacks, err = meter.Int64Counter("cvranker.extract.ocr_fallbacks",
		metric.WithDescription("PDFs that required OCR")); err != nil {
		return err
	}
	if metrics.RankRequests, err = meter.Int64Counter("cvranker.rank.requests",
		metric.WithDescription("Batch ranking requests")); err != nil {
		return err
	}
	if metrics.RateLimitHits, err = meter.Int64Counter("cvranker.server.rate_limit_hits",
		metric.WithDescription("Requests rejected by rate limiting")); err != nil {
		return err
	}

	m.metrics = metrics
	return nil
}

// Tracer returns a tracer, or a no-op tracer when disabled.
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if m.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// GetMetrics returns the custom instruments; may be nil when disabled.
func (m *Manager) GetMetrics() *Metrics {
	return m.metrics
}

// RecordAnalysis records the outcome of one candidate analysis.
func (m *Manager) RecordAnalysis(ctx context.Context, roleID string, score int, belowThreshold bool, duration time.Duration) {
	if m.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("role_id", roleID))
	m.metrics.CandidatesAnalyzed.Add(ctx, 1, attrs)
	m.metrics.AnalysisDuration.Record(ctx, duration.Seconds(), attrs)
	m.metrics.OverallScore.Record(ctx, int64(score), attrs)
	if belowThreshold {
		m.metrics.BelowThreshold.Add(ctx, 1, attrs)
	}
}

// Shutdown flushes and stops all providers.
func (m *Manager) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, shutdown := range m.shutdownFuncs {
		if err := shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// noopSpanExporter drops spans when no exporter is configured.
type noopSpanExporter struct{}

func (noopSpanExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (noopSpanExporter) Shutdown(context.Context) error                             { return nil }

// HTTPMiddleware wraps handlers with otelhttp instrumentation; inert when
// observability is disabled.
func (m *Manager) HTTPMiddleware(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !m.cfg.Enabled || !m.cfg.Tracing.Enabled {
			return next
		}
		return otelhttp.NewHandler(next, operation)
	}
}
