package dag

import (
	"context"
	"time"

	"github.com/kbukum/tabprofile/errors"
	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/observability"
)

// WithTracing wraps a Node with OpenTelemetry span creation.
// Each execution creates a span named "{prefix}.{nodeName}".
func WithTracing(node Node, prefix string) Node {
	return &tracingNode{inner: node, prefix: prefix}
}

type tracingNode struct {
	inner  Node
	prefix string
}

func (n *tracingNode) Name() string { return n.inner.Name() }
func (n *tracingNode) Unwrap() Node { return n.inner }

func (n *tracingNode) Run(ctx context.Context, state *State) (Patch, error) {
	spanName := n.prefix + "." + n.inner.Name()
	ctx, span := observability.StartSpan(ctx, spanName)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrStep, n.inner.Name())
	if key, ok := TaskKeyFromContext(ctx); ok {
		observability.SetSpanAttribute(ctx, observability.AttrTaskKey, key)
	}

	patch, err := n.inner.Run(ctx, state)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return patch, err
}

// WithMetrics wraps a Node with metric recording. Fan-out tasks are
// recorded as tasks, every other execution as a step.
func WithMetrics(node Node, metrics *observability.Metrics) Node {
	return &metricsNode{inner: node, metrics: metrics}
}

type metricsNode struct {
	inner   Node
	metrics *observability.Metrics
}

func (n *metricsNode) Name() string { return n.inner.Name() }
func (n *metricsNode) Unwrap() Node { return n.inner }

func (n *metricsNode) Run(ctx context.Context, state *State) (Patch, error) {
	_, isTask := TaskKeyFromContext(ctx)
	if isTask {
		n.metrics.TaskStarted(ctx, n.inner.Name())
	}

	start := time.Now()
	patch, err := n.inner.Run(ctx, state)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		code := errors.ErrCodeInternal
		if appErr, ok := errors.AsAppError(err); ok {
			code = appErr.Code
		}
		n.metrics.RecordError(ctx, string(code), n.inner.Name())
	}
	if isTask {
		n.metrics.TaskFinished(ctx, n.inner.Name(), status, duration)
	} else {
		n.metrics.RecordStep(ctx, n.inner.Name(), status, duration)
	}

	return patch, err
}

// WithLogging wraps a Node with execution logging.
// Logs: node name, task key, duration, and success/error status.
func WithLogging(node Node, log *logger.Logger) Node {
	return &loggingNode{inner: node, log: log}
}

type loggingNode struct {
	inner Node
	log   *logger.Logger
}

func (n *loggingNode) Name() string { return n.inner.Name() }
func (n *loggingNode) Unwrap() Node { return n.inner }

func (n *loggingNode) Run(ctx context.Context, state *State) (Patch, error) {
	start := time.Now()
	patch, err := n.inner.Run(ctx, state)
	duration := time.Since(start)

	fields := map[string]interface{}{
		"node":     n.inner.Name(),
		"duration": duration.String(),
	}
	if key, ok := TaskKeyFromContext(ctx); ok {
		fields["task"] = key
	}

	log := n.log.WithContext(ctx)
	if err != nil {
		fields["error"] = err.Error()
		log.Error("dag node failed", fields)
	} else {
		log.Debug("dag node completed", fields)
	}

	return patch, err
}
