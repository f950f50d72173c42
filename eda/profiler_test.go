package eda

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/tabprofile/dag"
	"github.com/kbukum/tabprofile/errors"
	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/stats"
	"github.com/kbukum/tabprofile/storage"
	"github.com/kbukum/tabprofile/storage/memory"
	"github.com/kbukum/tabprofile/table"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newProfiler(t *testing.T, cfg Config, opts ...Option) *Profiler {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewDefault("eda-test"))}, opts...)
	p, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func run(t *testing.T, p *Profiler, ref string) *Outcome {
	t.Helper()
	out, err := p.Run(context.Background(), ref)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out
}

func f(v *stats.Float) any {
	if v == nil {
		return nil
	}
	return float64(*v)
}

// loaderFunc adapts a function to table.Loader.
type loaderFunc func(ctx context.Context, ref string) (*table.Table, error)

func (fn loaderFunc) Load(ctx context.Context, ref string) (*table.Table, error) { return fn(ctx, ref) }

const sampleCSV = "Order ID,Unit Price,Customer Name\n" +
	"1,1,alice\n" +
	"2,2,bob\n" +
	"3,3,alice\n" +
	"4,4,zed\n" +
	"5,,\n"

func TestProfiler_Run(t *testing.T) {
	path := writeFile(t, "orders.csv", sampleCSV)
	out := run(t, newProfiler(t, Config{MaxParallel: 2}), path)

	if out.Failed() {
		t.Fatalf("unexpected failure: %v", out.Failure())
	}
	if out.Phase() != PhaseFinalized {
		t.Fatalf("phase = %s", out.Phase())
	}
	wantPhases := []Phase{
		PhaseLoading, PhaseHeadersIdentified, PhaseHeadersNormalized,
		PhaseColumnsAnalyzing, PhaseMerged, PhaseFinalized,
	}
	if !reflect.DeepEqual(out.Phases, wantPhases) {
		t.Fatalf("phases = %v, want %v", out.Phases, wantPhases)
	}
	if out.RunID == "" || out.Input != path {
		t.Fatalf("run id %q, input %q", out.RunID, out.Input)
	}

	if got := out.OriginalLabels(); !reflect.DeepEqual(got, []string{"Order ID", "Unit Price", "Customer Name"}) {
		t.Fatalf("original labels = %q", got)
	}
	wantNormalized := []string{"order_id", "unit_price", "customer_name"}
	if got := out.Mapping().Normalized(); !reflect.DeepEqual(got, wantNormalized) {
		t.Fatalf("mapping = %q", got)
	}
	if got := out.Table().Labels(); !reflect.DeepEqual(got, wantNormalized) {
		t.Fatalf("table labels = %q, want the mapping's codomain", got)
	}

	records := out.Statistics()
	if len(records) != 3 {
		t.Fatalf("statistics has %d entries, want 3", len(records))
	}

	price := records["unit_price"]
	if price.Kind != stats.KindNumeric || price.Dtype != table.DtypeFloat64 {
		t.Fatalf("unit_price = %s/%s", price.Kind, price.Dtype)
	}
	if price.Count != 4 || price.NullCount != 1 || price.UniqueCount != 4 {
		t.Fatalf("unit_price counts = %d/%d/%d", price.Count, price.NullCount, price.UniqueCount)
	}
	got := []any{f(price.Min), f(price.Max), f(price.Mean), f(price.Median), f(price.Q25), f(price.Q75)}
	want := []any{1.0, 4.0, 2.5, 2.5, 1.75, 3.25}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unit_price stats = %v, want %v", got, want)
	}

	if id := records["order_id"]; id.Dtype != table.DtypeInt64 || id.Count != 5 {
		t.Fatalf("order_id = %+v", id)
	}

	name := records["customer_name"]
	if name.Kind != stats.KindText || name.TextStats == nil {
		t.Fatalf("customer_name = %+v", name)
	}
	if name.MostCommon != "alice" || name.MinLength != 3 || name.MaxLength != 5 || name.UniqueCount != 3 {
		t.Fatalf("customer_name text stats = %+v", name.TextStats)
	}

	summary, ok := out.Summary()
	if !ok {
		t.Fatal("summary missing")
	}
	wantSummary := Summary{Rows: 5, Columns: 3, NumericColumns: 2, TextColumns: 1, TotalNulls: 2, Completeness: 13.0 / 15.0}
	if summary != wantSummary {
		t.Fatalf("summary = %+v, want %+v", summary, wantSummary)
	}
}

func TestProfiler_CoverageIndependentOfData(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "single column", input: "a\n1\n", want: 1},
		{name: "all null columns", input: "a,b,c\n,,\n,,\n", want: 3},
		{name: "header only", input: "a,b\n", want: 2},
		{name: "mixed", input: "x,y,z,w\n1,a,,true\n2.5,b,,false\n", want: 4},
	}

	p := newProfiler(t, Config{MaxParallel: 3})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, p, writeFile(t, "in.csv", tt.input))
			if out.Failed() {
				t.Fatalf("unexpected failure: %v", out.Failure())
			}
			records := out.Statistics()
			if len(records) != tt.want {
				t.Fatalf("statistics has %d entries, want %d", len(records), tt.want)
			}
			for _, label := range out.Table().Labels() {
				if _, ok := records[label]; !ok {
					t.Errorf("no record for column %q", label)
				}
			}
		})
	}
}

func TestProfiler_AllNullColumn(t *testing.T) {
	out := run(t, newProfiler(t, Config{}), writeFile(t, "nulls.csv", "empty,n\n,1\n,2\n,3\n"))
	r := out.Statistics()["empty"]

	if r.Kind != stats.KindNumeric || r.Count != 0 || r.NullCount != 3 || r.UniqueCount != 0 {
		t.Fatalf("record = %+v", r)
	}
	for name, v := range map[string]*stats.Float{
		"min": r.Min, "max": r.Max, "mean": r.Mean, "median": r.Median,
		"std": r.Std, "q25": r.Q25, "q75": r.Q75,
	} {
		if v != nil {
			t.Errorf("%s = %v, want null", name, *v)
		}
	}
}

func TestProfiler_LoadFailures(t *testing.T) {
	txt := writeFile(t, "notes.txt", "hello")
	missing := filepath.Join(t.TempDir(), "missing.csv")
	empty := writeFile(t, "empty.csv", "")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "unsupported format", ref: txt, want: "Unsupported file format: .txt. Use CSV or Excel files."},
		{name: "missing file", ref: missing, want: "File not found: " + missing},
		{name: "missing file with unknown extension", ref: "/no/such/file.txt", want: "File not found: /no/such/file.txt"},
		{name: "empty file", ref: empty, want: "Error loading file: No columns to parse from file"},
	}

	p := newProfiler(t, Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, p, tt.ref)
			if got := out.FailureMessage(); got != tt.want {
				t.Fatalf("failure = %q, want %q", got, tt.want)
			}
			if !errors.HasCode(out.Failure(), errors.ErrCodeLoad) {
				t.Fatalf("code of %v, want %s", out.Failure(), errors.ErrCodeLoad)
			}
			if got := out.State.Keys(); !reflect.DeepEqual(got, []string{InputPort.Key}) {
				t.Fatalf("state keys = %q, want only the input reference", got)
			}
			if !reflect.DeepEqual(out.Phases, []Phase{PhaseLoading, PhaseFailed}) {
				t.Fatalf("phases = %v", out.Phases)
			}
			for _, name := range []string{StepIdentify, StepNormalize, StepAnalyze, StepAggregate} {
				if st := out.Result.NodeResults[name].Status; st != dag.StatusSkipped {
					t.Errorf("%s status = %s, want skipped", name, st)
				}
			}
		})
	}
}

func TestProfiler_NoHeaders(t *testing.T) {
	empty, err := table.New()
	if err != nil {
		t.Fatal(err)
	}
	loader := loaderFunc(func(context.Context, string) (*table.Table, error) { return empty, nil })
	out := run(t, newProfiler(t, Config{}, WithLoader(loader)), "sheet.xlsx")

	if got := out.FailureMessage(); got != "No headers found" {
		t.Fatalf("failure = %q", got)
	}
	if !errors.HasCode(out.Failure(), errors.ErrCodeEmptyHeader) {
		t.Fatalf("code of %v", out.Failure())
	}
	want := []Phase{PhaseLoading, PhaseHeadersIdentified, PhaseFailed}
	if !reflect.DeepEqual(out.Phases, want) {
		t.Fatalf("phases = %v, want %v", out.Phases, want)
	}
	if _, ok := out.State.Get(StatisticsPort.Key); ok {
		t.Fatal("statistics must stay unset")
	}
}

func TestProfiler_LoaderErrorIsWrapped(t *testing.T) {
	loader := loaderFunc(func(context.Context, string) (*table.Table, error) {
		return nil, os.ErrPermission
	})
	out := run(t, newProfiler(t, Config{}, WithLoader(loader)), "x.csv")
	if got := out.FailureMessage(); got != "Error loading file: "+os.ErrPermission.Error() {
		t.Fatalf("failure = %q", got)
	}
}

func TestProfiler_CollisionPolicies(t *testing.T) {
	input := "Name,name ,Age\nalice,ALICE,30\nbob,BOB,40\n"

	t.Run("overwrite", func(t *testing.T) {
		out := run(t, newProfiler(t, Config{CollisionPolicy: CollisionOverwrite}), writeFile(t, "in.csv", input))
		if out.Failed() {
			t.Fatal(out.Failure())
		}
		if out.Mapping().Len() != 3 {
			t.Fatalf("mapping has %d entries, want 3", out.Mapping().Len())
		}
		records := out.Statistics()
		if len(records) != 2 {
			t.Fatalf("statistics has %d entries, want 2", len(records))
		}
		if got := records["name"].MostCommon; got != "ALICE" {
			t.Fatalf("later column must win, got most_common %q", got)
		}
	})

	t.Run("suffix", func(t *testing.T) {
		out := run(t, newProfiler(t, Config{CollisionPolicy: CollisionSuffix}), writeFile(t, "in.csv", input))
		records := out.Statistics()
		if len(records) != 3 || records["name_2"].MostCommon != "ALICE" {
			t.Fatalf("statistics = %v", records)
		}
	})

	t.Run("error", func(t *testing.T) {
		out := run(t, newProfiler(t, Config{CollisionPolicy: CollisionError}), writeFile(t, "in.csv", input))
		if !errors.HasCode(out.Failure(), errors.ErrCodeHeaderCollision) {
			t.Fatalf("failure = %v", out.Failure())
		}
		if out.Phase() != PhaseFailed {
			t.Fatalf("phase = %s", out.Phase())
		}
		if _, ok := out.State.Get(MappingPort.Key); ok {
			t.Fatal("mapping must stay unset")
		}
	})
}

func TestProfiler_RemoteInput(t *testing.T) {
	store := memory.Named("eda-test")
	t.Cleanup(store.Reset)
	if err := storage.UploadBytes(context.Background(), store, "in/orders.csv", []byte(sampleCSV)); err != nil {
		t.Fatal(err)
	}

	var cfg storage.Config
	cfg.ApplyDefaults()
	loader := table.NewLoader(table.Options{}, cfg, logger.NewDefault("eda-test"))
	out := run(t, newProfiler(t, Config{}, WithLoader(loader)), "mem://eda-test/in/orders.csv")
	if out.Failed() || len(out.Statistics()) != 3 {
		t.Fatalf("failure %v, statistics %v", out.Failure(), out.Statistics())
	}
}

func TestProfiler_CancelledContext(t *testing.T) {
	p := newProfiler(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, writeFile(t, "in.csv", sampleCSV)); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []Config{
		{MaxParallel: -1},
		{CollisionPolicy: "rename"},
		{TaskErrors: "ignore"},
		{TaskTimeout: -time.Second},
	}
	for _, cfg := range tests {
		if _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) should fail", cfg)
		}
	}
}

func TestProfiler_Graph(t *testing.T) {
	p := newProfiler(t, Config{})
	levels, err := dag.BuildLevels(p.Graph())
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{StepLoad}, {StepIdentify}, {StepNormalize}, {StepAnalyze}, {StepAggregate}}
	if !reflect.DeepEqual(levels, want) {
		t.Fatalf("levels = %v, want %v", levels, want)
	}

	diagram, err := dag.Mermaid(p.Graph())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(diagram, "analyze_columns__task[[analyze_column]]") {
		t.Fatalf("diagram missing the fan-out task:\n%s", diagram)
	}
}

// loadedState runs the linear steps on a table and returns the state the
// fan-out starts from.
func loadedState(t *testing.T, input string) *dag.State {
	t.Helper()
	tbl, err := table.ReadCSV(context.Background(), strings.NewReader(input), table.Options{})
	if err != nil {
		t.Fatal(err)
	}
	loader := loaderFunc(func(context.Context, string) (*table.Table, error) { return tbl, nil })

	state := NewState("mem")
	for _, step := range []dag.Node{LoadFile(loader), IdentifyHeaders(), NormalizeHeaders(CollisionOverwrite)} {
		patch, err := step.Run(context.Background(), state)
		if err != nil {
			t.Fatalf("%s: %v", step.Name(), err)
		}
		state.Apply(patch)
	}
	return state
}

func TestDispatchColumns(t *testing.T) {
	state := loadedState(t, sampleCSV)
	sends := DispatchColumns(state)

	keys := make([]string, len(sends))
	for i, s := range sends {
		keys[i] = s.Key
		tbl, _ := TablePort.Lookup(s.State)
		if tbl.NumCols() != 1 || tbl.Column(0).Name != s.Key {
			t.Errorf("task %q sees columns %q", s.Key, tbl.Labels())
		}
		if col, _ := ColumnPort.Lookup(s.State); col != s.Key {
			t.Errorf("column_name = %q, want %q", col, s.Key)
		}
	}
	if want := []string{"order_id", "unit_price", "customer_name"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %q, want %q", keys, want)
	}

	if _, ok := ColumnPort.Lookup(state); ok {
		t.Fatal("dispatch must not modify the pipeline state")
	}
	if tbl, _ := TablePort.Lookup(state); tbl.NumCols() != 3 {
		t.Fatal("dispatch must not modify the pipeline table")
	}

	state.Fail(errors.NoHeaders())
	if sends := DispatchColumns(state); len(sends) != 0 {
		t.Fatalf("failed state dispatched %d tasks", len(sends))
	}
	if sends := DispatchColumns(NewState("x")); len(sends) != 0 {
		t.Fatalf("state without table dispatched %d tasks", len(sends))
	}
}

func TestMergeIsOrderIndependent(t *testing.T) {
	state := loadedState(t, sampleCSV+"6,7,carol\n")
	sends := DispatchColumns(state)
	task := AnalyzeColumn()

	patches := make([]dag.Patch, len(sends))
	for i, s := range sends {
		p, err := task.Run(context.Background(), s.State)
		if err != nil {
			t.Fatal(err)
		}
		patches[i] = p
	}

	encode := func(order []int) []byte {
		folded := make([]dag.Patch, len(order))
		for i, j := range order {
			folded[i] = patches[j]
		}
		merged := NewState("x")
		merged.Apply(Schema().Fold(folded...))
		records, _ := StatisticsPort.Lookup(merged)
		data, err := json.Marshal(records)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	want := encode([]int{0, 1, 2})
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		if got := encode(rng.Perm(len(patches))); !bytes.Equal(got, want) {
			t.Fatalf("permuted merge differs:\n%s\n%s", got, want)
		}
	}
}

func TestStepsShortCircuit(t *testing.T) {
	state := loadedState(t, sampleCSV)
	state.Fail(errors.FileNotFound("x"))
	before := state.Keys()

	calls := 0
	loader := loaderFunc(func(context.Context, string) (*table.Table, error) {
		calls++
		return nil, nil
	})
	steps := []dag.Node{
		LoadFile(loader), IdentifyHeaders(), NormalizeHeaders(CollisionError), AggregateStatistics(),
	}
	for _, step := range steps {
		patch, err := step.Run(context.Background(), state)
		if err != nil || len(patch) != 0 {
			t.Errorf("%s on failed state = %v, %v; want empty patch", step.Name(), patch, err)
		}
	}
	if calls != 0 {
		t.Fatal("loader must not run on a failed state")
	}
	if !reflect.DeepEqual(state.Keys(), before) {
		t.Fatalf("keys changed: %q -> %q", before, state.Keys())
	}
}

func TestIdentifyHeaders_NoTable(t *testing.T) {
	_, err := IdentifyHeaders().Run(context.Background(), NewState("x"))
	if errors.Message(err) != "No dataframe available" || !errors.HasCode(err, errors.ErrCodeNoHeaders) {
		t.Fatalf("err = %v", err)
	}
}

func TestAnalyzeColumns_TaskErrors(t *testing.T) {
	failing := dag.NewStep(TaskAnalyze, func(ctx context.Context, s *dag.State) (dag.Patch, error) {
		if col, _ := ColumnPort.Lookup(s); col == "unit_price" {
			panic("bad column")
		}
		return AnalyzeColumn().Run(ctx, s)
	})
	fanout := func(policy TaskErrorPolicy) *dag.Fanout {
		return dag.NewFanout(dag.FanoutConfig{
			Name: StepAnalyze, Dispatch: DispatchColumns, Task: failing,
			Operation: analysisOperation, OnTaskError: onTaskError(policy),
		})
	}

	t.Run("isolate", func(t *testing.T) {
		state := loadedState(t, sampleCSV)
		patch, err := fanout(TaskErrorsIsolate).Run(context.Background(), state)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		state.Apply(patch)
		records, _ := StatisticsPort.Lookup(state)
		if len(records) != 3 {
			t.Fatalf("statistics has %d entries, want 3", len(records))
		}
		bad := records["unit_price"]
		if !bad.Failed() || bad.Dtype != table.DtypeFloat64 || !strings.Contains(bad.Error, "bad column") {
			t.Fatalf("unit_price = %+v", bad)
		}
		if s := Summarize(5, 3, records); s.ErrorColumns != 1 || s.NumericColumns != 1 || s.TextColumns != 1 {
			t.Fatalf("summary = %+v", s)
		}
	})

	t.Run("fail", func(t *testing.T) {
		_, err := fanout(TaskErrorsFail).Run(context.Background(), loadedState(t, sampleCSV))
		if !errors.HasCode(err, errors.ErrCodeColumnAnalysis) {
			t.Fatalf("err = %v", err)
		}
		if msg := errors.Message(err); !strings.HasPrefix(msg, `Column analysis failed for "unit_price": `) {
			t.Fatalf("message = %q", msg)
		}
	})
}

func TestAnalyzeColumns_Timeout(t *testing.T) {
	blocking := dag.NewStep(TaskAnalyze, func(ctx context.Context, _ *dag.State) (dag.Patch, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	fan := dag.NewFanout(dag.FanoutConfig{
		Name: StepAnalyze, Dispatch: DispatchColumns, Task: blocking,
		Timeout: 20 * time.Millisecond, Operation: analysisOperation, OnTaskError: onTaskError(TaskErrorsIsolate),
	})

	_, err := fan.Run(context.Background(), loadedState(t, sampleCSV))
	if got := errors.Message(err); got != "Column analysis timed out after 20ms" {
		t.Fatalf("err = %v", err)
	}
}

func TestSummarize(t *testing.T) {
	if s := Summarize(0, 0, nil); s != (Summary{}) {
		t.Fatalf("empty summary = %+v", s)
	}

	records := map[string]stats.Record{
		"price": {Kind: stats.KindNumeric, Dtype: "float64", Count: 3, NullCount: 1},
		"name":  {Kind: stats.KindText, Dtype: "object", Count: 4},
		"flag":  {Kind: stats.KindText, Dtype: "bool", Count: 2, NullCount: 2},
		"bad":   stats.ErrorRecord("object", context.Canceled),
	}
	want := Summary{Rows: 4, Columns: 4, NumericColumns: 1, TextColumns: 2, ErrorColumns: 1, TotalNulls: 3, Completeness: 0.75}
	if got := Summarize(4, 4, records); got != want {
		t.Fatalf("summary = %+v, want %+v", got, want)
	}
}
