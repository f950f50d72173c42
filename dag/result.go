package dag

import "time"

// Node statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Result holds the outcome of a graph execution.
type Result struct {
	NodeResults map[string]NodeResult
	// Trace lists the nodes in the order their results were merged.
	Trace    []string
	Duration time.Duration
	// Failure is the state's failure after the run, nil on success.
	Failure error
}

// Succeeded reports whether the run finished without a failure.
func (r *Result) Succeeded() bool { return r.Failure == nil }

// NodeResult holds the outcome of a single node execution.
type NodeResult struct {
	Name     string
	Status   string // "completed" | "skipped" | "failed"
	Level    int
	Duration time.Duration
	// Keys lists the state keys the node's patch wrote, sorted.
	Keys  []string
	Error error
}
