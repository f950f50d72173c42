package eda

import (
	"context"
	"fmt"

	"github.com/kbukum/tabprofile/dag"
	"github.com/kbukum/tabprofile/errors"
	"github.com/kbukum/tabprofile/stats"
	"github.com/kbukum/tabprofile/table"
)

// Node names of the profiling pipeline.
const (
	StepLoad      = "load_file"
	StepIdentify  = "identify_headers"
	StepNormalize = "normalize_headers"
	StepAnalyze   = "analyze_columns"
	StepAggregate = "aggregate_statistics"

	// TaskAnalyze is the task run once per column by StepAnalyze.
	TaskAnalyze = "analyze_column"
)

// analysisOperation names the fan-out in timeout messages.
const analysisOperation = "Column analysis"

// guarded turns a node into a no-op once the state has failed.
type guarded struct {
	dag.Node
}

func (g guarded) Run(ctx context.Context, state *dag.State) (dag.Patch, error) {
	if state.Failed() {
		return dag.Patch{}, nil
	}
	return g.Node.Run(ctx, state)
}

func (g guarded) Unwrap() dag.Node { return g.Node }

// LoadFile reads input_reference through loader into table.
func LoadFile(loader table.Loader) dag.Node {
	return guarded{dag.NewStep(StepLoad, func(ctx context.Context, s *dag.State) (dag.Patch, error) {
		ref, err := dag.Read(s, InputPort)
		if err != nil {
			return nil, errors.InvalidInput(InputPort.Key, err.Error())
		}
		t, err := loader.Load(ctx, ref)
		if err != nil {
			if !errors.IsAppError(err) {
				err = errors.LoadFailed(err)
			}
			return nil, err
		}
		return TablePort.Put(nil, t), nil
	})}
}

// IdentifyHeaders copies the table's column labels into original_labels.
func IdentifyHeaders() dag.Node {
	return guarded{dag.Typed(dag.TypedConfig[*table.Table, []string]{
		Name: StepIdentify,
		Extract: func(s *dag.State) (*table.Table, error) {
			t, ok := TablePort.Lookup(s)
			if !ok || t == nil {
				return nil, errors.NoTable()
			}
			return t, nil
		},
		Fn: func(_ context.Context, t *table.Table) ([]string, error) {
			return t.Labels(), nil
		},
		Output: OriginalLabelsPort,
	})}
}

// NormalizeHeaders writes label_mapping and replaces table with a copy whose
// columns carry the normalized labels.
func NormalizeHeaders(policy CollisionPolicy) dag.Node {
	return guarded{dag.NewStep(StepNormalize, func(_ context.Context, s *dag.State) (dag.Patch, error) {
		labels, _ := OriginalLabelsPort.Lookup(s)
		if len(labels) == 0 {
			return nil, errors.NoHeaders()
		}
		t, ok := TablePort.Lookup(s)
		if !ok || t == nil {
			return nil, errors.NoTable()
		}

		mapping, err := NormalizeLabels(labels, policy)
		if err != nil {
			return nil, err
		}
		renamed, err := t.Rename(mapping.Normalized())
		if err != nil {
			return nil, errors.Internal(err)
		}

		patch := MappingPort.Put(nil, mapping)
		return TablePort.Put(patch, renamed), nil
	})}
}

// AnalyzeColumns fans out one TaskAnalyze task per table column and merges
// their records into statistics.
func AnalyzeColumns(cfg Config) *dag.Fanout {
	return dag.NewFanout(dag.FanoutConfig{
		Name:        StepAnalyze,
		Dispatch:    DispatchColumns,
		Task:        AnalyzeColumn(),
		MaxParallel: cfg.MaxParallel,
		Timeout:     cfg.TaskTimeout,
		Operation:   analysisOperation,
		OnTaskError: onTaskError(cfg.TaskErrors),
	})
}

// DispatchColumns returns one Send per current column in column order. Each
// task state is a snapshot whose table holds only the task's column.
func DispatchColumns(s *dag.State) []dag.Send {
	if s.Failed() {
		return nil
	}
	t, ok := TablePort.Lookup(s)
	if !ok || t == nil {
		return nil
	}

	sends := make([]dag.Send, 0, t.NumCols())
	for i, c := range t.Columns() {
		column, err := t.Project(i)
		if err != nil {
			continue
		}
		task := s.Snapshot()
		dag.Write(task, TablePort, column)
		dag.Write(task, ColumnPort, c.Name)
		sends = append(sends, dag.Send{Key: c.Name, State: task})
	}
	return sends
}

// AnalyzeColumn computes the statistics record of a task state's column.
func AnalyzeColumn() dag.Node {
	return dag.NewStep(TaskAnalyze, func(ctx context.Context, s *dag.State) (dag.Patch, error) {
		name, err := dag.Read(s, ColumnPort)
		if err != nil {
			return nil, err
		}
		t, err := dag.Read(s, TablePort)
		if err != nil {
			return nil, err
		}
		if t.NumCols() != 1 {
			return nil, fmt.Errorf("eda: task table has %d columns, want 1", t.NumCols())
		}

		record, err := stats.Analyze(ctx, t.Column(0))
		if err != nil {
			return nil, err
		}
		return StatisticsPort.Put(nil, map[string]stats.Record{name: record}), nil
	})
}

func onTaskError(policy TaskErrorPolicy) dag.TaskErrorHandler {
	return func(send dag.Send, err error) (dag.Patch, error) {
		if policy == TaskErrorsFail {
			return nil, errors.ColumnAnalysis(send.Key, err)
		}
		var dtype string
		if t, ok := TablePort.Lookup(send.State); ok && t != nil && t.NumCols() == 1 {
			dtype = t.Column(0).Dtype
		}
		return StatisticsPort.Put(nil, map[string]stats.Record{send.Key: stats.ErrorRecord(dtype, err)}), nil
	}
}

// AggregateStatistics writes the cross-column summary. It never fails.
func AggregateStatistics() dag.Node {
	return guarded{dag.NewStep(StepAggregate, func(_ context.Context, s *dag.State) (dag.Patch, error) {
		var rows, cols int
		if t, ok := TablePort.Lookup(s); ok && t != nil {
			rows, cols = t.Shape()
		}
		records, _ := StatisticsPort.Lookup(s)
		return SummaryPort.Put(nil, Summarize(rows, cols, records)), nil
	})}
}
