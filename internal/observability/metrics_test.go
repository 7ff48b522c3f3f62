package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/zero-day-ai/text2cypher/internal/pipeline"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestPipelineMetrics_RecordRun(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewPipelineMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRun(ctx, pipeline.RunStats{Variant: pipeline.VariantRetryCheck, Database: "movies", Model: "gpt", Corrections: 2, Duration: 1500 * time.Millisecond})
	m.RecordRun(ctx, pipeline.RunStats{Variant: pipeline.VariantRetryCheck, Database: "movies", Model: "gpt", Duration: time.Second, Kind: pipeline.KindTimeout})

	metrics := collect(t, reader)

	runs, ok := metrics[MetricRuns].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	outcomes := map[string]int64{}
	for _, dp := range runs.DataPoints {
		v, _ := dp.Attributes.Value("outcome")
		outcomes[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"success": 1, "timeout": 1}, outcomes)

	corrections, ok := metrics[MetricCorrections].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range corrections.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	duration, ok := metrics[MetricRunDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	var sum float64
	for _, dp := range duration.DataPoints {
		count += dp.Count
		sum += dp.Sum
	}
	assert.Equal(t, uint64(2), count)
	assert.InDelta(t, 2.5, sum, 1e-9)
}

func TestInitMetrics_Disabled(t *testing.T) {
	m, err := InitMetrics(context.Background(), MetricsConfig{})
	require.NoError(t, err)
	assert.Nil(t, m.Handler())

	pm, err := NewPipelineMetrics(m.MeterProvider())
	require.NoError(t, err)
	pm.RecordRun(context.Background(), pipeline.RunStats{})
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestInitMetrics_Prometheus(t *testing.T) {
	m, err := InitMetrics(context.Background(), MetricsConfig{Enabled: true, Provider: "prometheus", Port: 9464})
	require.NoError(t, err)
	defer func() { _ = m.Shutdown(context.Background()) }()
	require.NotNil(t, m.Handler())

	pm, err := NewPipelineMetrics(m.MeterProvider())
	require.NoError(t, err)
	pm.RecordRun(context.Background(), pipeline.RunStats{Database: "movies", Corrections: 1, Duration: time.Second})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "text2cypher")
	assert.Contains(t, string(body), `database="movies"`)
}

func TestInitMetrics_Invalid(t *testing.T) {
	_, err := InitMetrics(context.Background(), MetricsConfig{Enabled: true, Provider: "statsd"})
	assert.Error(t, err)
}
