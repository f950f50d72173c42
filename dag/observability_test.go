package dag

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/observability"
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

func TestWithTracing_WrapsNode(t *testing.T) {
	exporter := installRecorder(t)
	inner := newFuncNode("test-node", func(context.Context, *State) (Patch, error) {
		return Patch{"traced": true}, nil
	})

	traced := WithTracing(inner, "dag.pipeline")
	if traced.Name() != "test-node" {
		t.Fatalf("expected 'test-node', got %q", traced.Name())
	}
	if Unwrap(traced) != inner {
		t.Fatal("Unwrap must return the inner node")
	}

	patch, err := traced.Run(context.Background(), NewState(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patch["traced"] != true {
		t.Fatalf("unexpected patch %v", patch)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "dag.pipeline.test-node" {
		t.Fatalf("spans = %v", spans)
	}
}

func TestWithTracing_TaskSpans(t *testing.T) {
	exporter := installRecorder(t)
	fan := NewFanout(FanoutConfig{
		Name: "fan", Dispatch: dispatchItems, Task: lengthTask(nil),
	})
	g := Decorate(&Graph{Nodes: map[string]Node{"fan": fan}}, func(n Node) Node {
		return WithTracing(n, "test")
	})
	state := NewState(fanoutSchema())
	Write(state, itemsPort, []string{"x", "yy"})
	if _, err := (&Engine{}).Execute(context.Background(), g, state); err != nil {
		t.Fatal(err)
	}

	keys := map[string]bool{}
	for _, span := range exporter.GetSpans() {
		for _, attr := range span.Attributes {
			if string(attr.Key) == observability.AttrTaskKey {
				keys[attr.Value.AsString()] = true
			}
		}
	}
	if !keys["x"] || !keys["yy"] {
		t.Fatalf("task spans missing keys, got %v", keys)
	}
}

func TestWithTracing_PropagatesError(t *testing.T) {
	installRecorder(t)
	nodeErr := errors.New("fail")
	inner := newFuncNode("fail-node", func(context.Context, *State) (Patch, error) {
		return nil, nodeErr
	})

	_, err := WithTracing(inner, "dag").Run(context.Background(), NewState(nil))
	if !errors.Is(err, nodeErr) {
		t.Fatalf("expected node error, got %v", err)
	}
}

func TestWithLogging(t *testing.T) {
	log := logger.NewDefault("dag-test")
	nodeErr := errors.New("log-fail")

	ok := WithLogging(newFuncNode("log-node", func(context.Context, *State) (Patch, error) {
		return Patch{"logged": true}, nil
	}), log)
	if ok.Name() != "log-node" {
		t.Fatalf("expected 'log-node', got %q", ok.Name())
	}
	if patch, err := ok.Run(context.Background(), NewState(nil)); err != nil || patch["logged"] != true {
		t.Fatalf("Run = %v, %v", patch, err)
	}

	failing := WithLogging(newFuncNode("fail-log", func(context.Context, *State) (Patch, error) {
		return nil, nodeErr
	}), log)
	if _, err := failing.Run(context.Background(), NewState(nil)); !errors.Is(err, nodeErr) {
		t.Fatalf("expected node error, got %v", err)
	}
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestWithMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observability.NewMetrics(mp.Meter("dag-test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	taskErr := errors.New("bad")
	fan := NewFanout(FanoutConfig{
		Name: "fan", Dispatch: dispatchItems,
		Task: lengthTask(func(key string) error {
			if key == "bad" {
				return taskErr
			}
			return nil
		}),
		OnTaskError: func(s Send, err error) (Patch, error) { return Patch{}, nil },
	})
	g := Decorate(&Graph{
		Nodes: map[string]Node{"fan": fan, "after": newFuncNode("after", nil)},
		Edges: []Edge{{"fan", "after"}},
	}, func(n Node) Node { return WithMetrics(n, metrics) })

	state := NewState(fanoutSchema())
	Write(state, itemsPort, []string{"a", "b", "bad"})
	if _, err := (&Engine{}).Execute(context.Background(), g, state); err != nil {
		t.Fatal(err)
	}

	sums := collectSums(t, reader)
	if sums["task.total"] != 3 {
		t.Errorf("task.total = %d, want 3", sums["task.total"])
	}
	if sums["step.total"] != 2 {
		t.Errorf("step.total = %d, want 2", sums["step.total"])
	}
	if sums["error.total"] != 1 {
		t.Errorf("error.total = %d, want 1", sums["error.total"])
	}
	if sums["task.active"] != 0 {
		t.Errorf("task.active = %d, want 0", sums["task.active"])
	}
}
