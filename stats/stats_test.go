package stats

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/kbukum/tabprofile/table"
)

func approx(t *testing.T, name string, got *Float, want float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s = nil, want %v", name, want)
		return
	}
	if math.Abs(float64(*got)-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, *got, want)
	}
}

func TestAnalyzeNumeric(t *testing.T) {
	col := table.NewNumericColumn("age", []float64{1, 2, 3, 4, 0}, []bool{false, false, false, false, true})
	r, err := Analyze(context.Background(), col)
	if err != nil {
		t.Fatal(err)
	}

	if r.Kind != KindNumeric || r.Dtype != table.DtypeFloat64 {
		t.Errorf("kind/dtype = %s/%s", r.Kind, r.Dtype)
	}
	if r.Count != 4 || r.NullCount != 1 || r.UniqueCount != 4 {
		t.Errorf("counts = %d/%d/%d", r.Count, r.NullCount, r.UniqueCount)
	}
	approx(t, "min", r.Min, 1)
	approx(t, "max", r.Max, 4)
	approx(t, "mean", r.Mean, 2.5)
	approx(t, "median", r.Median, 2.5)
	approx(t, "q25", r.Q25, 1.75)
	approx(t, "q75", r.Q75, 3.25)
	approx(t, "std", r.Std, math.Sqrt(5.0/3.0))
	if r.TextStats != nil {
		t.Error("numeric record must not carry text stats")
	}
}

func TestAnalyzeNumericEdgeCases(t *testing.T) {
	t.Run("single value has no std", func(t *testing.T) {
		r, _ := Analyze(context.Background(), table.NewNumericColumn("x", []float64{7}, nil))
		approx(t, "mean", r.Mean, 7)
		approx(t, "q75", r.Q75, 7)
		if r.Std != nil {
			t.Errorf("std = %v, want nil", *r.Std)
		}
	})

	t.Run("all null", func(t *testing.T) {
		r, _ := Analyze(context.Background(), table.NewNumericColumn("x", []float64{0, 0}, []bool{true, true}))
		if r.NumericStats == nil {
			t.Fatal("numeric stats must be present for numeric columns")
		}
		if r.Min != nil || r.Mean != nil || r.Std != nil {
			t.Error("statistics of an empty column must be nil")
		}
		if r.Count != 0 || r.NullCount != 2 || r.UniqueCount != 0 {
			t.Errorf("counts = %d/%d/%d", r.Count, r.NullCount, r.UniqueCount)
		}
	})

	t.Run("duplicates", func(t *testing.T) {
		r, _ := Analyze(context.Background(), table.NewNumericColumn("x", []float64{2, 2, 2, 5}, nil))
		if r.UniqueCount != 2 {
			t.Errorf("unique = %d, want 2", r.UniqueCount)
		}
		approx(t, "median", r.Median, 2)
	})
}

func TestAnalyzeText(t *testing.T) {
	col := table.NewTextColumn("city",
		[]string{"Oslo", "Bergen", "", "Oslo", "Ås", "Bergen"},
		[]bool{false, false, true, false, false, false})
	r, err := Analyze(context.Background(), col)
	if err != nil {
		t.Fatal(err)
	}

	if r.Kind != KindText || r.Dtype != table.DtypeObject {
		t.Errorf("kind/dtype = %s/%s", r.Kind, r.Dtype)
	}
	if r.Count != 5 || r.NullCount != 1 || r.UniqueCount != 3 {
		t.Errorf("counts = %d/%d/%d", r.Count, r.NullCount, r.UniqueCount)
	}
	if r.NumericStats != nil {
		t.Error("text record must not carry numeric stats")
	}
	if r.TextStats == nil {
		t.Fatal("expected text stats")
	}
	if r.MostCommon != "Oslo" {
		t.Errorf("most common = %q, want first of the tied values", r.MostCommon)
	}
	if r.MinLength != 2 || r.MaxLength != 6 {
		t.Errorf("length range = %d..%d, want 2..6", r.MinLength, r.MaxLength)
	}
	if want := 22.0 / 5.0; math.Abs(r.AvgLength-want) > 1e-9 {
		t.Errorf("avg length = %v, want %v", r.AvgLength, want)
	}
}

func TestAnalyzeTextAllNull(t *testing.T) {
	col := table.NewTextColumn("notes", []string{"", ""}, []bool{true, true})
	r, _ := Analyze(context.Background(), col)
	if r.TextStats != nil {
		t.Error("text stats must be absent without values")
	}
	if r.Count != 0 || r.NullCount != 2 {
		t.Errorf("counts = %d/%d", r.Count, r.NullCount)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Analyze(ctx, table.NewTextColumn("x", []string{"a"}, nil)); err == nil {
		t.Fatal("expected context error")
	}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}
	tests := []struct {
		q    float64
		want float64
	}{
		{0, 10}, {0.25, 20}, {0.5, 30}, {0.75, 40}, {1, 50}, {0.1, 14},
	}
	for _, tc := range tests {
		if got := Quantile(sorted, tc.q); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Quantile(%v) = %v, want %v", tc.q, got, tc.want)
		}
	}
}

func TestMostCommon(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"b", "a", "a", "b"}, "b"},
		{[]string{"x"}, "x"},
		{[]string{"a", "b", "b"}, "b"},
	}
	for _, tc := range tests {
		if got := MostCommon(tc.in); got != tc.want {
			t.Errorf("MostCommon(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRecordJSON(t *testing.T) {
	numeric, _ := Analyze(context.Background(), table.NewNumericColumn("x", []float64{1}, nil))
	data, err := json.Marshal(numeric)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"kind":"numeric"`, `"dtype":"int64"`, `"std":null`, `"min":1`} {
		if !strings.Contains(s, want) {
			t.Errorf("numeric JSON %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "most_common") || strings.Contains(s, "error") {
		t.Errorf("numeric JSON has unexpected fields: %s", s)
	}

	text, _ := Analyze(context.Background(), table.NewTextColumn("y", []string{"hi"}, nil))
	data, _ = json.Marshal(text)
	if s := string(data); !strings.Contains(s, `"most_common":"hi"`) || strings.Contains(s, `"min"`) {
		t.Errorf("text JSON = %s", s)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.TextStats == nil || back.MostCommon != "hi" || back.NumericStats != nil {
		t.Errorf("decoded record = %+v", back)
	}
}

func TestFloatInfinityJSON(t *testing.T) {
	inf := Float(math.Inf(1))
	data, err := json.Marshal(&NumericStats{Max: &inf})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"max":"Infinity"`) {
		t.Errorf("JSON = %s", data)
	}
	var back NumericStats
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Max == nil || !math.IsInf(float64(*back.Max), 1) {
		t.Errorf("decoded max = %v", back.Max)
	}
}

func TestErrorRecord(t *testing.T) {
	r := ErrorRecord("object", context.DeadlineExceeded)
	if !r.Failed() || r.Error == "" || r.Count != 0 {
		t.Errorf("error record = %+v", r)
	}
}
