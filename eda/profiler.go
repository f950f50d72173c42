package eda

import (
	"context"
	"embed"

	"github.com/google/uuid"

	"github.com/kbukum/tabprofile/dag"
	"github.com/kbukum/tabprofile/errors"
	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/observability"
	"github.com/kbukum/tabprofile/stats"
	"github.com/kbukum/tabprofile/storage"
	"github.com/kbukum/tabprofile/table"
)

// PipelineName is the embedded pipeline definition run by a Profiler.
const PipelineName = "eda"

const defaultServiceName = "tabprofile"

//go:embed pipelines/*.yaml
var pipelineFS embed.FS

// Pipelines returns the loader of the embedded pipeline definitions.
func Pipelines() dag.PipelineLoader {
	return dag.NewFSPipelineLoader(pipelineFS, "pipelines")
}

// Profiler runs the profiling pipeline over one input per call. A Profiler
// is safe for concurrent runs.
type Profiler struct {
	cfg     Config
	loader  table.Loader
	log     *logger.Logger
	metrics *observability.Metrics
	service string

	graph     *dag.Graph
	decorated *dag.Graph
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithLoader sets the table loader. The default reads local files only.
func WithLoader(l table.Loader) Option {
	return func(p *Profiler) { p.loader = l }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Profiler) { p.log = l }
}

// WithMetrics enables step, task and run metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Profiler) { p.metrics = m }
}

// WithServiceName sets the service name reported on run spans and metrics.
func WithServiceName(name string) Option {
	return func(p *Profiler) { p.service = name }
}

// New validates cfg and resolves the embedded pipeline.
func New(cfg Config, opts ...Option) (*Profiler, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Profiler{cfg: cfg, service: defaultServiceName}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get(logger.ComponentEDA)
	}
	if p.loader == nil {
		var storageCfg storage.Config
		storageCfg.ApplyDefaults()
		p.loader = table.NewLoader(cfg.Table, storageCfg, p.log)
	}

	loader := Pipelines()
	def, err := loader.Load(PipelineName)
	if err != nil {
		return nil, errors.Internal(err)
	}
	g, err := dag.ResolvePipeline(def, dag.NewRegistry(p.components()...), loader)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if _, err := dag.BuildLevels(g); err != nil {
		return nil, errors.Internal(err)
	}

	p.graph = g
	p.decorated = dag.Decorate(g, p.decorate)
	return p, nil
}

func (p *Profiler) components() []dag.Node {
	return []dag.Node{
		LoadFile(p.loader),
		IdentifyHeaders(),
		NormalizeHeaders(p.cfg.CollisionPolicy),
		AnalyzeColumns(p.cfg),
		AggregateStatistics(),
	}
}

func (p *Profiler) decorate(n dag.Node) dag.Node {
	n = dag.WithLogging(n, p.log)
	if p.metrics != nil {
		n = dag.WithMetrics(n, p.metrics)
	}
	return dag.WithTracing(n, PipelineName)
}

// Graph returns the undecorated pipeline graph.
func (p *Profiler) Graph() *dag.Graph { return p.graph }

// Run profiles the input behind ref. Pipeline failures are reported through
// the Outcome; the returned error is non-nil only when the run could not
// execute, e.g. a cancelled context.
func (p *Profiler) Run(ctx context.Context, ref string) (*Outcome, error) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	rc := observability.NewRunContext(p.service, runID, ref, p.metrics)
	ctx, span := rc.StartSpan(ctx, observability.SpanRun)
	log := p.log.WithContext(ctx)

	log.Info("profiling started", logger.Fields("input", ref))

	state := NewState(ref)
	engine := &dag.Engine{Log: p.log}
	res, err := engine.Execute(ctx, p.decorated, state)
	if err != nil {
		rc.End(ctx, span, "error", err)
		log.Error("profiling aborted", logger.ErrorFields("execute", err))
		return nil, err
	}

	out := &Outcome{RunID: runID, Input: ref, State: state, Result: res, Phases: Phases(res)}
	fields := logger.Fields("input", ref, "phase", string(out.Phase()), "duration", res.Duration.String())
	if res.Failure != nil {
		rc.End(ctx, span, "failed", res.Failure)
		log.Warn("profiling failed", logger.MergeWithError(fields, res.Failure))
	} else {
		rc.End(ctx, span, "ok", nil)
		fields["columns"] = len(out.Statistics())
		log.Info("profiling finished", fields)
	}
	return out, nil
}

// Outcome is the final state of one run.
type Outcome struct {
	RunID  string
	Input  string
	State  *dag.State
	Result *dag.Result
	// Phases lists the phases the run passed, ending in PhaseFinalized or
	// PhaseFailed.
	Phases []Phase
}

// Phase returns the terminal phase.
func (o *Outcome) Phase() Phase { return o.Phases[len(o.Phases)-1] }

// Failed reports whether the run failed.
func (o *Outcome) Failed() bool { return o.State.Failed() }

// Failure returns the recorded failure.
func (o *Outcome) Failure() error { return o.State.Failure() }

// FailureMessage returns the human-readable failure message, empty on
// success.
func (o *Outcome) FailureMessage() string { return errors.Message(o.State.Failure()) }

// Table returns the final, normalized table.
func (o *Outcome) Table() *table.Table {
	t, _ := TablePort.Lookup(o.State)
	return t
}

// OriginalLabels returns the labels found in the input.
func (o *Outcome) OriginalLabels() []string {
	labels, _ := OriginalLabelsPort.Lookup(o.State)
	return labels
}

// Mapping returns the original → normalized label mapping.
func (o *Outcome) Mapping() *LabelMapping {
	m, _ := MappingPort.Lookup(o.State)
	return m
}

// Statistics returns the merged per-column records keyed by normalized
// label.
func (o *Outcome) Statistics() map[string]stats.Record {
	s, _ := StatisticsPort.Lookup(o.State)
	return s
}

// Summary returns the cross-column summary of a finalized run.
func (o *Outcome) Summary() (Summary, bool) {
	return SummaryPort.Lookup(o.State)
}
