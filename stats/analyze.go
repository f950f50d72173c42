package stats

import (
	"context"
	"math"
	"sort"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kbukum/tabprofile/table"
)

// Analyze computes the record for c.
func Analyze(ctx context.Context, c *table.Column) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if c.Kind == table.KindNumeric {
		return analyzeNumeric(c), nil
	}
	return analyzeText(c), nil
}

func analyzeNumeric(c *table.Column) Record {
	values := c.Floats()
	r := Record{
		Kind:         KindNumeric,
		Dtype:        c.Dtype,
		Count:        len(values),
		NullCount:    c.NullCount(),
		UniqueCount:  distinct(values),
		NumericStats: &NumericStats{},
	}
	if len(values) == 0 {
		return r
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	r.Min = value(floats.Min(values))
	r.Max = value(floats.Max(values))
	r.Mean = value(stat.Mean(values, nil))
	r.Median = value(Quantile(sorted, 0.5))
	r.Q25 = value(Quantile(sorted, 0.25))
	r.Q75 = value(Quantile(sorted, 0.75))
	if len(values) > 1 {
		r.Std = value(stat.StdDev(values, nil))
	}
	return r
}

func analyzeText(c *table.Column) Record {
	values := c.Texts()
	r := Record{
		Kind:        KindText,
		Dtype:       c.Dtype,
		Count:       len(values),
		NullCount:   c.NullCount(),
		UniqueCount: distinct(values),
	}
	if len(values) == 0 {
		return r
	}

	minLen, maxLen, total := math.MaxInt, 0, 0
	for _, s := range values {
		n := utf8.RuneCountInString(s)
		minLen = min(minLen, n)
		maxLen = max(maxLen, n)
		total += n
	}
	r.TextStats = &TextStats{
		MostCommon: MostCommon(values),
		MinLength:  minLen,
		MaxLength:  maxLen,
		AvgLength:  float64(total) / float64(len(values)),
	}
	return r
}

// Quantile returns the q-quantile of sorted values, interpolating linearly
// between the two closest ranks at position q*(n-1). sorted must be non-empty
// and in ascending order.
func Quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// MostCommon returns the most frequent value. Ties go to the value that
// appears first.
func MostCommon(values []string) string {
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func distinct[T comparable](values []T) int {
	seen := make(map[T]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
