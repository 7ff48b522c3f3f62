package observability

import (
	"context"
	"errors"
	"net/http"
	"strings"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Metric names
const (
	MetricRuns        = "text2cypher.runs"
	MetricCorrections = "text2cypher.corrections"
	MetricRunDuration = "text2cypher.run.duration"
)

const meterName = "github.com/zero-day-ai/text2cypher"

// Metrics owns the meter provider built from a MetricsConfig.
type Metrics struct {
	provider metric.MeterProvider
	sdk      *sdkmetric.MeterProvider
	handler  http.Handler
}

// InitMetrics builds the configured exporter. When metrics are disabled the
// provider is a no-op.
func InitMetrics(ctx context.Context, cfg MetricsConfig) (*Metrics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return &Metrics{provider: noop.NewMeterProvider()}, nil
	}

	switch strings.ToLower(cfg.Provider) {
	case "prometheus":
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, types.WrapError(ErrCodeMetricsRegistration, "failed to create prometheus exporter", err)
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		return &Metrics{
			provider: mp,
			sdk:      mp,
			handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}, nil

	default:
		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, NewExporterConnectionError(cfg.Endpoint, err)
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
		return &Metrics{provider: mp, sdk: mp}, nil
	}
}

// MeterProvider returns the provider instruments are created from.
func (m *Metrics) MeterProvider() metric.MeterProvider {
	return m.provider
}

// Handler returns the scrape handler, or nil unless the provider is
// prometheus.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Shutdown flushes and stops an SDK provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.sdk == nil {
		return nil
	}
	if err := m.sdk.Shutdown(ctx); err != nil && !errors.Is(err, sdkmetric.ErrReaderShutdown) {
		return types.WrapError(ErrCodeShutdownTimeout, "failed to shutdown meter provider", err)
	}
	return nil
}

// PipelineMetrics records finished runs as OpenTelemetry measurements.
type PipelineMetrics struct {
	runs        metric.Int64Counter
	corrections metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewPipelineMetrics creates the run instruments on mp.
func NewPipelineMetrics(mp metric.MeterProvider) (*PipelineMetrics, error) {
	meter := mp.Meter(meterName)

	runs, err := meter.Int64Counter(MetricRuns,
		metric.WithDescription("Finished pipeline runs"),
		metric.WithUnit("{run}"))
	if err != nil {
		return nil, types.WrapError(ErrCodeMetricsRegistration, "failed to create runs counter", err)
	}
	corrections, err := meter.Int64Counter(MetricCorrections,
		metric.WithDescription("Query corrections spent by finished runs"),
		metric.WithUnit("{correction}"))
	if err != nil {
		return nil, types.WrapError(ErrCodeMetricsRegistration, "failed to create corrections counter", err)
	}
	duration, err := meter.Float64Histogram(MetricRunDuration,
		metric.WithDescription("Wall time of finished runs"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, types.WrapError(ErrCodeMetricsRegistration, "failed to create duration histogram", err)
	}

	return &PipelineMetrics{runs: runs, corrections: corrections, duration: duration}, nil
}

// RecordRun implements pipeline.StatsRecorder.
func (m *PipelineMetrics) RecordRun(ctx context.Context, rs pipeline.RunStats) {
	outcome := "success"
	if !rs.Succeeded() {
		outcome = string(rs.Kind)
	}
	attrs := metric.WithAttributes(
		attribute.String("variant", string(rs.Variant)),
		attribute.String("database", rs.Database),
		attribute.String("model", rs.Model),
		attribute.String("outcome", outcome),
	)

	m.runs.Add(ctx, 1, attrs)
	m.corrections.Add(ctx, int64(rs.Corrections), attrs)
	m.duration.Record(ctx, rs.Duration.Seconds(), attrs)
}

var _ pipeline.StatsRecorder = (*PipelineMetrics)(nil)
