package observability

import (
	"context"
	"testing"
	"time"

	"guesser/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(cfg)
	mp.mu.Lock()
	require.NoError(t, mp.initializeWithReader(reader))
	mp.mu.Unlock()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestMetricsProvider_RecordsGameLifecycle(t *testing.T) {
	mp, reader := newManualProvider(t)
	ctx := context.Background()

	mp.RecordGameStarted(ctx, "easy")
	mp.RecordGameStarted(ctx, "easy")
	mp.RecordGameStarted(ctx, "hard")
	mp.RecordHintGranted(ctx, "easy")
	mp.RecordGameFinished(ctx, "easy", true)
	mp.RecordGameFinished(ctx, "hard", false)
	mp.RecordResultFailure(ctx)
	mp.RecordNATSMessagePublished(ctx, "game_finished")

	metrics := collect(t, reader)

	assert.Equal(t, int64(2), sumFor(t, metrics[GamesStartedTotal], attribute.String(LabelMode, "easy")))
	assert.Equal(t, int64(1), sumFor(t, metrics[GamesStartedTotal], attribute.String(LabelMode, "hard")))
	assert.Equal(t, int64(1), sumFor(t, metrics[HintsGrantedTotal], attribute.String(LabelMode, "easy")))
	assert.Equal(t, int64(1), sumFor(t, metrics[GamesFinishedTotal],
		attribute.String(LabelMode, "easy"), attribute.String(LabelOutcome, OutcomeWon)))
	assert.Equal(t, int64(1), sumFor(t, metrics[GamesFinishedTotal],
		attribute.String(LabelMode, "hard"), attribute.String(LabelOutcome, OutcomeLost)))
	assert.Equal(t, int64(1), sumFor(t, metrics[ResultRecordFailuresTotal]))
	assert.Equal(t, int64(1), sumFor(t, metrics[NATSMessagesPublishedTotal], attribute.String(LabelEventType, "game_finished")))
}

func TestMetricsProvider_RecordHTTPRequest(t *testing.T) {
	mp, reader := newManualProvider(t)

	mp.RecordHTTPRequest(context.Background(), "POST", "/game/guess", 200, 15*time.Millisecond)

	metrics := collect(t, reader)
	hist, ok := metrics[HTTPRequestDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	route, _ := hist.DataPoints[0].Attributes.Value(LabelRoute)
	assert.Equal(t, "/game/guess", route.AsString())
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = false

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordGameStarted(context.Background(), "easy")
		mp.RecordHTTPRequest(context.Background(), "GET", "/health", 200, time.Millisecond)
	})
	assert.NoError(t, mp.Shutdown(context.Background()))

	var nilProvider *MetricsProvider
	assert.NotPanics(t, func() { nilProvider.RecordResultFailure(context.Background()) })
}

func TestMetricsProvider_Initialize_ExporterTypes(t *testing.T) {
	tests := []struct {
		exporter string
		wantErr  bool
	}{
		{"none", false},
		{"console", false},
		{"otlp", true},
	}

	for _, tt := range tests {
		t.Run(tt.exporter, func(t *testing.T) {
			cfg := config.NewTestConfig()
			cfg.OTelEnabled = true
			cfg.OTelExporterType = tt.exporter
			cfg.OTelExportIntervalMillis = 60000

			mp := NewMetricsProvider(cfg)
			err := mp.Initialize(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, mp.Shutdown(context.Background()))
		})
	}
}
