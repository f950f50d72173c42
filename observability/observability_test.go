package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("expected 15s interval, got %v", cfg.MetricInterval)
	}
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, "tabprofile", "dev", "development")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown returned %v", err)
	}
}

func TestNewMetrics(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRun(ctx, "tabprofile", "ok", time.Second)
	metrics.RecordStep(ctx, "load_file", "ok", 10*time.Millisecond)
	metrics.TaskStarted(ctx, "analyze_column")
	metrics.TaskFinished(ctx, "analyze_column", "error", 5*time.Millisecond)
	metrics.RecordError(ctx, "COLUMN_ANALYSIS", "analyze_column")
}

func TestRunContext(t *testing.T) {
	exporter := installRecorder(t)

	rc := NewRunContext("tabprofile", "run-1", "data.csv", nil)
	ctx, span := rc.StartSpan(context.Background(), SpanRun)

	if got := RunContextFromContext(ctx); got != rc {
		t.Fatal("expected run context to be stored in ctx")
	}
	rc.End(ctx, span, "failed", fmt.Errorf("File not found: data.csv"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanRun {
		t.Errorf("expected span %q, got %q", SpanRun, spans[0].Name)
	}
	found := false
	for _, a := range spans[0].Attributes {
		if string(a.Key) == AttrRunID && a.Value.AsString() == "run-1" {
			found = true
		}
	}
	if !found {
		t.Error("expected run.id attribute on span")
	}
}

func TestRunContextFromContextNotSet(t *testing.T) {
	if RunContextFromContext(context.Background()) != nil {
		t.Error("expected nil when run context not set")
	}
}

func TestRunContextWithMetrics(t *testing.T) {
	metrics, _ := NewMetrics(noop.NewMeterProvider().Meter("test"))
	rc := NewRunContext("tabprofile", "run-2", "x.csv", metrics)
	rc.StartTime = time.Now().Add(-50 * time.Millisecond)

	ctx, span := rc.StartSpan(context.Background(), SpanRun)
	rc.End(ctx, span, "ok", nil)

	if d := rc.Duration(); d < 45*time.Millisecond {
		t.Errorf("expected duration >= 45ms, got %v", d)
	}
}

func TestSetSpanAttribute(t *testing.T) {
	exporter := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "test-attrs")
	SetSpanAttribute(ctx, "string-key", "value")
	SetSpanAttribute(ctx, "int-key", 42)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "float-key", 3.14)
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "string-slice-key", []string{"a", "b"})
	SetSpanAttribute(ctx, "unsupported-key", struct{}{})
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if len(spans[0].Attributes) != 6 {
		t.Errorf("expected 6 attributes, got %d", len(spans[0].Attributes))
	}
}

func TestSetSpanAttributeNoSpan(t *testing.T) {
	SetSpanAttribute(context.Background(), "key", "value")
}

func TestSetSpanError(t *testing.T) {
	exporter := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "test-error")
	SetSpanError(ctx, fmt.Errorf("test error"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code != codes.Error {
		t.Fatalf("expected one errored span, got %+v", spans)
	}
}

func TestSetSpanErrorNoSpan(t *testing.T) {
	SetSpanError(context.Background(), fmt.Errorf("no span error"))
}
