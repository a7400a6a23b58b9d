package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"guesser/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics for the service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	gamesStartedCounter     metric.Int64Counter
	gamesFinishedCounter    metric.Int64Counter
	hintsGrantedCounter     metric.Int64Counter
	recordFailuresCounter   metric.Int64Counter
	natsPublishedCounter    metric.Int64Counter
	httpRequestDurationHist metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		var err error
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.initializeWithReader(reader); err != nil {
		return err
	}

	// Set as global meter provider
	otel.SetMeterProvider(mp.meterProvider)

	log.Info("Metrics provider initialized successfully")
	return nil
}

// initializeWithReader builds the meter provider around reader. Callers hold mp.mu.
func (mp *MetricsProvider) initializeWithReader(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("guesser")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.gamesStartedCounter, err = mp.meter.Int64Counter(
		GamesStartedTotal,
		metric.WithDescription("Total number of games started"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create games started counter: %w", err)
	}

	mp.gamesFinishedCounter, err = mp.meter.Int64Counter(
		GamesFinishedTotal,
		metric.WithDescription("Total number of games won or lost"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create games finished counter: %w", err)
	}

	mp.hintsGrantedCounter, err = mp.meter.Int64Counter(
		HintsGrantedTotal,
		metric.WithDescription("Total number of charged hint requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create hints granted counter: %w", err)
	}

	mp.recordFailuresCounter, err = mp.meter.Int64Counter(
		ResultRecordFailuresTotal,
		metric.WithDescription("Total number of game results that could not be persisted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create record failures counter: %w", err)
	}

	mp.natsPublishedCounter, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of NATS messages published"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	mp.httpRequestDurationHist, err = mp.meter.Float64Histogram(
		HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordGameStarted counts a new game
func (mp *MetricsProvider) RecordGameStarted(ctx context.Context, mode string) {
	if !mp.isEnabled() {
		return
	}
	mp.gamesStartedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelMode, mode)))
}

// RecordGameFinished counts a game reaching won or lost
func (mp *MetricsProvider) RecordGameFinished(ctx context.Context, mode string, won bool) {
	if !mp.isEnabled() {
		return
	}
	outcome := OutcomeLost
	if won {
		outcome = OutcomeWon
	}
	mp.gamesFinishedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelMode, mode),
		attribute.String(LabelOutcome, outcome),
	))
}

// RecordHintGranted counts a charged hint
func (mp *MetricsProvider) RecordHintGranted(ctx context.Context, mode string) {
	if !mp.isEnabled() {
		return
	}
	mp.hintsGrantedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelMode, mode)))
}

// RecordResultFailure counts a result that exhausted its retries
func (mp *MetricsProvider) RecordResultFailure(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}
	mp.recordFailuresCounter.Add(ctx, 1)
}

// RecordNATSMessagePublished counts a forwarded event
func (mp *MetricsProvider) RecordNATSMessagePublished(ctx context.Context, eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsPublishedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelEventType, eventType)))
}

// RecordHTTPRequest records one served request
func (mp *MetricsProvider) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}
	mp.httpRequestDurationHist.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(LabelMethod, method),
		attribute.String(LabelRoute, route),
		attribute.Int(LabelStatus, status),
	))
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
