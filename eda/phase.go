package eda

import "github.com/kbukum/tabprofile/dag"

// Phase is an observable state of a profiling run.
type Phase string

// Run phases in the order a successful run passes them.
const (
	PhaseLoading           Phase = "loading"
	PhaseHeadersIdentified Phase = "headers_identified"
	PhaseHeadersNormalized Phase = "headers_normalized"
	PhaseColumnsAnalyzing  Phase = "columns_analyzing"
	PhaseMerged            Phase = "merged"
	PhaseFinalized         Phase = "finalized"
	PhaseFailed            Phase = "failed"
)

// Phases replays the engine trace of a run into the phases it went through.
// The first phase is always PhaseLoading; a failed run ends in PhaseFailed.
func Phases(res *dag.Result) []Phase {
	phases := []Phase{PhaseLoading}
	if res == nil {
		return phases
	}

	for _, name := range res.Trace {
		nr := res.NodeResults[name]
		if nr.Status == dag.StatusSkipped {
			break
		}
		if name == StepAnalyze {
			phases = append(phases, PhaseColumnsAnalyzing)
		}
		if nr.Status == dag.StatusFailed {
			break
		}
		switch name {
		case StepIdentify:
			phases = append(phases, PhaseHeadersIdentified)
		case StepNormalize:
			phases = append(phases, PhaseHeadersNormalized)
		case StepAnalyze:
			phases = append(phases, PhaseMerged)
		case StepAggregate:
			phases = append(phases, PhaseFinalized)
		}
	}

	if res.Failure != nil {
		phases = append(phases, PhaseFailed)
	}
	return phases
}
