package eda

import (
	"github.com/kbukum/tabprofile/dag"
	"github.com/kbukum/tabprofile/stats"
	"github.com/kbukum/tabprofile/table"
)

// State keys of the profiling pipeline.
var (
	InputPort          = dag.Port[string]{Key: "input_reference"}
	TablePort          = dag.Port[*table.Table]{Key: "table"}
	OriginalLabelsPort = dag.Port[[]string]{Key: "original_labels"}
	MappingPort        = dag.Port[*LabelMapping]{Key: "label_mapping"}
	StatisticsPort     = dag.Port[map[string]stats.Record]{Key: "statistics"}
	SummaryPort        = dag.Port[Summary]{Key: "summary"}
	// ColumnPort is set only in task states.
	ColumnPort = dag.Port[string]{Key: "column_name"}
)

// Schema returns the reducers of the pipeline state: statistics patches are
// unioned, every other key is overwritten.
func Schema() *dag.Schema {
	return dag.NewSchema().WithReducer(StatisticsPort.Key, dag.MapUnion[string, stats.Record]())
}

// NewState returns the initial state of a run over ref.
func NewState(ref string) *dag.State {
	s := dag.NewState(Schema())
	dag.Write(s, InputPort, ref)
	return s
}
