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

	"github.com/kbukum/tabprofile/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
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

// Metrics holds the instruments recorded by pipeline runs.
type Metrics struct {
	runTotal     metric.Int64Counter
	runDuration  metric.Float64Histogram
	stepTotal    metric.Int64Counter
	stepDuration metric.Float64Histogram
	taskTotal    metric.Int64Counter
	taskDuration metric.Float64Histogram
	tasksActive  metric.Int64UpDownCounter
	errorTotal   metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.runTotal, err = meter.Int64Counter("run.total",
		metric.WithDescription("Total number of profiling runs"),
	); err != nil {
		return nil, fmt.Errorf("creating run.total counter: %w", err)
	}
	if m.runDuration, err = meter.Float64Histogram("run.duration",
		metric.WithDescription("Duration of profiling runs in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating run.duration histogram: %w", err)
	}
	if m.stepTotal, err = meter.Int64Counter("step.total",
		metric.WithDescription("Total number of pipeline step executions"),
	); err != nil {
		return nil, fmt.Errorf("creating step.total counter: %w", err)
	}
	if m.stepDuration, err = meter.Float64Histogram("step.duration",
		metric.WithDescription("Duration of pipeline steps in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating step.duration histogram: %w", err)
	}
	if m.taskTotal, err = meter.Int64Counter("task.total",
		metric.WithDescription("Total number of fan-out tasks"),
	); err != nil {
		return nil, fmt.Errorf("creating task.total counter: %w", err)
	}
	if m.taskDuration, err = meter.Float64Histogram("task.duration",
		metric.WithDescription("Duration of fan-out tasks in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating task.duration histogram: %w", err)
	}
	if m.tasksActive, err = meter.Int64UpDownCounter("task.active",
		metric.WithDescription("Number of fan-out tasks currently running"),
	); err != nil {
		return nil, fmt.Errorf("creating task.active gauge: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by code and component"),
	); err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return m, nil
}

// RecordRun records a finished profiling run.
func (m *Metrics) RecordRun(ctx context.Context, service, status string, duration time.Duration) {
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("status", status),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
	))
}

// RecordStep records one step execution.
func (m *Metrics) RecordStep(ctx context.Context, step, status string, duration time.Duration) {
	m.stepTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
	m.stepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
	))
}

// TaskStarted increments the running task gauge.
func (m *Metrics) TaskStarted(ctx context.Context, step string) {
	m.tasksActive.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}

// TaskFinished decrements the running task gauge and records the task.
func (m *Metrics) TaskFinished(ctx context.Context, step, status string, duration time.Duration) {
	m.tasksActive.Add(ctx, -1, metric.WithAttributes(attribute.String("step", step)))
	m.taskTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
	))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
