package dag

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/util"
)

// Engine executes a graph in dependency order.
type Engine struct {
	// MaxParallel limits concurrent nodes per level (0 = unlimited).
	MaxParallel int
	// Log receives level and node events; nil uses the "dag" component logger.
	Log *logger.Logger
}

type nodeOutcome struct {
	patch    Patch
	err      error
	duration time.Duration
}

// Execute runs every node in dependency order. Node errors are recorded as
// the state's failure and skip the remaining nodes. The returned error is
// non-nil only for an invalid graph or a cancelled context.
func (e *Engine) Execute(ctx context.Context, g *Graph, state *State) (*Result, error) {
	start := time.Now()

	levels, err := BuildLevels(g)
	if err != nil {
		return nil, err
	}

	log := e.logger().WithContext(ctx)
	result := &Result{
		NodeResults: make(map[string]NodeResult, len(g.Nodes)),
	}

	for depth, level := range levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if state.Failed() {
			for _, name := range level {
				result.NodeResults[name] = NodeResult{Name: name, Status: StatusSkipped, Level: depth}
				result.Trace = append(result.Trace, name)
			}
			continue
		}

		log.Debug("dag level started", logger.Fields("level", depth, "nodes", level))
		outcomes := e.executeLevel(ctx, g, state, level)

		// A failure on the level discards every sibling patch; otherwise
		// patches merge in name order so concurrent nodes yield a
		// deterministic state.
		failed := false
		for i, name := range level {
			if err := outcomes[i].err; err != nil && !failed {
				failed = true
				state.Fail(err)
				log.Debug("dag node failed", logger.Fields("node", name, "error", err.Error()))
			}
		}
		for i, name := range level {
			out := outcomes[i]
			nr := NodeResult{Name: name, Level: depth, Duration: out.duration}
			switch {
			case out.err != nil:
				nr.Status = StatusFailed
				nr.Error = out.err
			case failed:
				nr.Status = StatusSkipped
			default:
				nr.Status = StatusCompleted
				nr.Keys = patchKeys(out.patch)
				state.Apply(out.patch)
			}
			result.NodeResults[name] = nr
			result.Trace = append(result.Trace, name)
		}
	}

	result.Duration = time.Since(start)
	result.Failure = state.Failure()
	return result, nil
}

func (e *Engine) executeLevel(ctx context.Context, g *Graph, state *State, names []string) []nodeOutcome {
	outcomes := make([]nodeOutcome, len(names))

	var eg errgroup.Group
	eg.SetLimit(e.concurrency(len(names)))
	for i, name := range names {
		eg.Go(func() error {
			start := time.Now()
			patch, err := runSafe(ctx, g.Nodes[name], state)
			outcomes[i] = nodeOutcome{patch: patch, err: err, duration: time.Since(start)}
			return nil
		})
	}
	_ = eg.Wait()

	return outcomes
}

func (e *Engine) concurrency(levelSize int) int {
	if e.MaxParallel <= 0 || e.MaxParallel > levelSize {
		return levelSize
	}
	return e.MaxParallel
}

func (e *Engine) logger() *logger.Logger {
	if e.Log != nil {
		return e.Log
	}
	return logger.Get(logger.ComponentDAG)
}

func patchKeys(p Patch) []string {
	return util.SortedKeys(p)
}
