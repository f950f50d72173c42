package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/kbukum/tabprofile/eda"
	"github.com/kbukum/tabprofile/stats"
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// Text writes the human-readable report of out to w.
func Text(w io.Writer, out *eda.Outcome) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\n%s\nEDA GRAPH EXECUTION RESULTS\n%s\n", heavyRule, heavyRule)

	if out.Failed() {
		fmt.Fprintf(bw, "\n❌ ERROR: %s\n", out.FailureMessage())
		return bw.Flush()
	}

	fmt.Fprintf(bw, "\n📁 File: %s\n", out.Input)
	shape := "N/A"
	if t := out.Table(); t != nil {
		rows, cols := t.Shape()
		shape = fmt.Sprintf("(%d, %d)", rows, cols)
	}
	fmt.Fprintf(bw, "📊 Shape: %s\n", shape)

	section(bw, "ORIGINAL HEADERS:")
	for _, h := range out.OriginalLabels() {
		fmt.Fprintf(bw, "  • %s\n", h)
	}

	section(bw, "NORMALIZED HEADERS MAPPING:")
	if m := out.Mapping(); m != nil {
		for _, p := range m.Pairs() {
			fmt.Fprintf(bw, "  %-30s → %s\n", p.Original, p.Normalized)
		}
	}

	section(bw, "COLUMN STATISTICS:")
	for _, c := range Columns(out) {
		writeColumn(bw, c)
	}

	fmt.Fprintf(bw, "\n%s\n", heavyRule)
	return bw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", lightRule, title, lightRule)
}

func writeColumn(w io.Writer, c Column) {
	fmt.Fprintf(w, "\n📊 %s\n", c.Name)
	fmt.Fprintf(w, "   Type: %s\n", c.Dtype)
	fmt.Fprintf(w, "   Count: %d | Null: %d | Unique: %d\n", c.Count, c.NullCount, c.UniqueCount)

	switch {
	case c.IsNumeric() && c.NumericStats != nil:
		n := c.NumericStats
		if n.Min != nil {
			fmt.Fprintf(w, "   Min: %s | Max: %s\n", fixed(n.Min, 2), fixed(n.Max, 2))
		} else {
			fmt.Fprintln(w, "   Min: N/A | Max: N/A")
		}
		if n.Mean != nil {
			fmt.Fprintf(w, "   Mean: %s | Median: %s\n", fixed(n.Mean, 2), fixed(n.Median, 2))
		} else {
			fmt.Fprintln(w, "   Mean: N/A | Median: N/A")
		}
		if n.Std != nil {
			fmt.Fprintf(w, "   Std: %s\n", fixed(n.Std, 2))
		} else {
			fmt.Fprintln(w, "   Std: N/A")
		}
		if n.Q25 != nil {
			fmt.Fprintf(w, "   Q25: %s | Q75: %s\n", fixed(n.Q25, 2), fixed(n.Q75, 2))
		} else {
			fmt.Fprintln(w, "   Q25: N/A | Q75: N/A")
		}
	case c.TextStats != nil:
		t := c.TextStats
		fmt.Fprintf(w, "   Most Common: %s\n", t.MostCommon)
		fmt.Fprintf(w, "   Length Range: %d - %d (avg: %.1f)\n", t.MinLength, t.MaxLength, t.AvgLength)
	case c.Failed():
		fmt.Fprintf(w, "   Error: %s\n", c.Error)
	}
}

// fixed formats v with prec decimals; infinities print as inf and -inf.
func fixed(v *stats.Float, prec int) string {
	if v == nil {
		return "N/A"
	}
	f := float64(*v)
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.*f", prec, f)
}
