package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/swiftkit/logger"
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
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
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

	if log != nil {
		log.Info("meter initialized", logger.Fields(
			"service", config.ServiceName,
			"endpoint", config.Endpoint,
			"interval", config.Interval.String(),
		))
	}

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the swiftkit metric instruments.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	authTotal       metric.Int64Counter
	reauthTotal     metric.Int64Counter
	cacheLookups    metric.Int64Counter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("swift.request.total",
		metric.WithDescription("Total number of storage requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating swift.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("swift.request.duration",
		metric.WithDescription("Duration of storage requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating swift.request.duration histogram: %w", err)
	}

	authTotal, err := meter.Int64Counter("swift.auth.total",
		metric.WithDescription("Authentications against the identity service"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating swift.auth.total counter: %w", err)
	}

	reauthTotal, err := meter.Int64Counter("swift.reauth.total",
		metric.WithDescription("Re-authentications triggered by a 401 response"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating swift.reauth.total counter: %w", err)
	}

	cacheLookups, err := meter.Int64Counter("swift.cache.lookups",
		metric.WithDescription("Token cache lookups by result (hit, miss, error)"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating swift.cache.lookups counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("swift.error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating swift.error.total counter: %w", err)
	}

	return &Metrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		authTotal:       authTotal,
		reauthTotal:     reauthTotal,
		cacheLookups:    cacheLookups,
		errorTotal:      errorTotal,
	}, nil
}

// DefaultMetrics creates instruments on the global swiftkit meter. It
// falls back to nil, which every Record method accepts, if the meter
// rejects an instrument.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(Meter(InstrumentationName))
	if err != nil {
		return nil
	}
	return m
}

// RecordRequest records a completed storage request. status is the HTTP
// status code, or 0 when no response was received.
func (m *Metrics) RecordRequest(ctx context.Context, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", strconv.Itoa(status)),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
	))
}

// RecordAuthentication records an authentication attempt by protocol
// version and outcome ("ok", "cached", "error").
func (m *Metrics) RecordAuthentication(ctx context.Context, version int, outcome string) {
	if m == nil {
		return
	}
	m.authTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("version", version),
		attribute.String("outcome", outcome),
	))
}

// RecordReauth records a 401-triggered re-authentication.
func (m *Metrics) RecordReauth(ctx context.Context) {
	if m == nil {
		return
	}
	m.reauthTotal.Add(ctx, 1)
}

// RecordCacheLookup records a token cache lookup.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordCacheError records a token cache lookup that failed. The lookup
// is counted with result "error" and otherwise treated as a miss.
func (m *Metrics) RecordCacheError(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "error")))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
