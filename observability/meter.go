package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/voicekit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds metric instruments for the plugin lifecycle.
type Metrics struct {
	activationTotal    metric.Int64Counter
	activationDuration metric.Float64Histogram
	fallbackTotal      metric.Int64Counter
	candidatesTried    metric.Int64Histogram
	dataClearTotal     metric.Int64Counter
	errorTotal         metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	activationTotal, err := meter.Int64Counter("plugin.activation.total",
		metric.WithDescription("Total plugin activation attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating plugin.activation.total counter: %w", err)
	}

	activationDuration, err := meter.Float64Histogram("plugin.activation.duration",
		metric.WithDescription("Duration of plugin activation attempts in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating plugin.activation.duration histogram: %w", err)
	}

	fallbackTotal, err := meter.Int64Counter("plugin.fallback.total",
		metric.WithDescription("Total fallback orchestration runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating plugin.fallback.total counter: %w", err)
	}

	candidatesTried, err := meter.Int64Histogram("plugin.fallback.candidates",
		metric.WithDescription("Candidates tried per fallback run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating plugin.fallback.candidates histogram: %w", err)
	}

	dataClearTotal, err := meter.Int64Counter("plugin.data_clear.total",
		metric.WithDescription("Total bulk data clear operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating plugin.data_clear.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("plugin.error.total",
		metric.WithDescription("Total errors by type and plugin"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating plugin.error.total counter: %w", err)
	}

	return &Metrics{
		activationTotal:    activationTotal,
		activationDuration: activationDuration,
		fallbackTotal:      fallbackTotal,
		candidatesTried:    candidatesTried,
		dataClearTotal:     dataClearTotal,
		errorTotal:         errorTotal,
	}, nil
}

// RecordActivation records one activation attempt for a plugin.
func (m *Metrics) RecordActivation(ctx context.Context, plugin, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("plugin", plugin),
		attribute.String("status", status),
	)
	m.activationTotal.Add(ctx, 1, attrs)
	m.activationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("plugin", plugin),
	))
}

// RecordFallback records a completed fallback run.
func (m *Metrics) RecordFallback(ctx context.Context, status string, candidates int) {
	m.fallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	m.candidatesTried.Record(ctx, int64(candidates), metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordDataClear records a bulk data clear operation.
func (m *Metrics) RecordDataClear(ctx context.Context, status string) {
	m.dataClearTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordError records an error by type and plugin.
func (m *Metrics) RecordError(ctx context.Context, errType, plugin string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("plugin", plugin),
	))
}
