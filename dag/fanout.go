package dag

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/tabprofile/errors"
	"github.com/kbukum/tabprofile/observability"
	"github.com/kbukum/tabprofile/pipeline"
)

// Send is one unit of fan-out work: a task key and the state the task runs
// against.
type Send struct {
	Key   string
	State *State
}

// Dispatcher decides the tasks of a fan-out from the current state. An empty
// result is a valid fan-out with no tasks.
type Dispatcher func(state *State) []Send

// TaskErrorHandler decides what a failed task contributes. Returning a patch
// isolates the failure to that task; returning an error fails the fan-out.
type TaskErrorHandler func(send Send, err error) (Patch, error)

// FanoutConfig configures a Fanout node.
type FanoutConfig struct {
	// Name is the unique node identifier in the graph.
	Name string
	// Dispatch builds one Send per task.
	Dispatch Dispatcher
	// Task runs once per Send.
	Task Node
	// MaxParallel bounds concurrent tasks (0 = one worker per task).
	MaxParallel int
	// Timeout bounds the whole fan-out (0 = none).
	Timeout time.Duration
	// Operation names the fan-out in timeout errors; defaults to Name.
	Operation string
	// OnTaskError handles task failures. When nil, or when it returns an
	// error, the fan-out fails with that error: pending tasks are cancelled
	// and Run returns once every started task has returned.
	OnTaskError TaskErrorHandler
}

// Fanout runs one task per dispatched Send and merges their patches in
// dispatch order through the state's reducers.
type Fanout struct {
	cfg FanoutConfig
}

// NewFanout creates a Fanout node.
func NewFanout(cfg FanoutConfig) *Fanout {
	if cfg.Operation == "" {
		cfg.Operation = cfg.Name
	}
	return &Fanout{cfg: cfg}
}

// Name returns the node name.
func (f *Fanout) Name() string { return f.cfg.Name }

// Task returns the node run for each Send.
func (f *Fanout) Task() Node { return f.cfg.Task }

// withTask returns a copy of f running task.
func (f *Fanout) withTask(task Node) *Fanout {
	cfg := f.cfg
	cfg.Task = task
	return &Fanout{cfg: cfg}
}

// Run dispatches the tasks, waits for all of them and returns their folded
// patch.
func (f *Fanout) Run(ctx context.Context, state *State) (Patch, error) {
	sends := f.cfg.Dispatch(state)
	observability.SetSpanAttribute(ctx, observability.AttrTasks, len(sends))
	if len(sends) == 0 {
		return Patch{}, nil
	}

	runCtx := ctx
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	workers := f.cfg.MaxParallel
	if workers <= 0 || workers > len(sends) {
		workers = len(sends)
	}

	tasks := pipeline.ParallelOrdered(pipeline.FromSlice(sends), workers,
		func(ctx context.Context, s Send) (Patch, error) {
			patch, err := runSafe(WithTaskKey(ctx, s.Key), f.cfg.Task, s.State)
			if err == nil {
				return patch, nil
			}
			if ctx.Err() != nil || f.cfg.OnTaskError == nil {
				return nil, err
			}
			return f.cfg.OnTaskError(s, err)
		})

	patches, err := pipeline.Collect(runCtx, tasks)
	if err != nil {
		if stderrors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, errors.Timeout(f.cfg.Operation, f.cfg.Timeout).WithCause(err)
		}
		return nil, err
	}
	return state.Schema().Fold(patches...), nil
}

type taskKeyCtx struct{}

// WithTaskKey returns a context carrying the key of the running fan-out task.
func WithTaskKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, taskKeyCtx{}, key)
}

// TaskKeyFromContext returns the fan-out task key, if the context belongs to
// a task.
func TaskKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(taskKeyCtx{}).(string)
	return key, ok
}
