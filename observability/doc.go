// Package observability provides OpenTelemetry tracing and metrics for
// profiling runs.
//
// Telemetry is opt-in. Without Init the global no-op providers are used and
// spans and instruments cost next to nothing.
//
// Tracing:
//
//	shutdown, err := observability.Init(ctx, cfg, "tabprofile", version.Short())
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "eda.run")
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("tabprofile"))
//	metrics.RecordStep(ctx, "load_file", "ok", duration)
//
// Runs:
//
//	rc := observability.NewRunContext("tabprofile", runID, path, metrics)
//	ctx, span := rc.StartSpan(ctx, "eda.run")
//	defer rc.End(ctx, span, "ok", nil)
package observability
