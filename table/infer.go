package table

import (
	"strconv"
	"strings"
)

// DefaultNullValues are the cell tokens read as missing values.
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

var boolTokens = map[string]string{
	"True": "True", "TRUE": "True", "true": "True",
	"False": "False", "FALSE": "False", "false": "False",
}

// Options controls how raw cells become typed columns.
type Options struct {
	// NullValues replaces DefaultNullValues when non-empty. The empty cell
	// is always missing.
	NullValues []string `mapstructure:"null_values" yaml:"null_values"`
	// Sheet selects the Excel worksheet; empty means the first sheet.
	Sheet string `mapstructure:"sheet" yaml:"sheet"`
	// Delimiter is the CSV field separator; empty means ','.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

func (o Options) nullSet() map[string]struct{} {
	tokens := o.NullValues
	if len(tokens) == 0 {
		tokens = DefaultNullValues
	}
	set := make(map[string]struct{}, len(tokens)+1)
	set[""] = struct{}{}
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func (o Options) comma() rune {
	for _, r := range o.Delimiter {
		return r
	}
	return ','
}

// inferColumn types a column of raw cells. A column whose non-null cells all
// parse as numbers is numeric, as is a column with rows that are all null.
// A column of true/false tokens without nulls is bool. Anything else is
// object text.
func inferColumn(name string, raw []string, nullTokens map[string]struct{}) *Column {
	n := len(raw)
	nulls := make([]bool, n)
	nullCount := 0
	for i, cell := range raw {
		if _, ok := nullTokens[cell]; ok {
			nulls[i] = true
			nullCount++
		}
	}

	if n == 0 {
		return NewTextColumn(name, []string{}, nulls)
	}

	if nums, integral, ok := parseNumbers(raw, nulls); ok {
		c := NewNumericColumn(name, nums, nulls)
		c.Dtype = DtypeFloat64
		if integral && nullCount == 0 {
			c.Dtype = DtypeInt64
		}
		return c
	}

	if nullCount == 0 {
		if strs, ok := parseBools(raw); ok {
			c := NewTextColumn(name, strs, nulls)
			c.Dtype = DtypeBool
			return c
		}
	}

	strs := make([]string, n)
	for i, cell := range raw {
		if !nulls[i] {
			strs[i] = cell
		}
	}
	return NewTextColumn(name, strs, nulls)
}

// parseNumbers reports whether every non-null cell is a number, and whether
// every one of them was written as an integer.
func parseNumbers(raw []string, nulls []bool) ([]float64, bool, bool) {
	nums := make([]float64, len(raw))
	integral := true
	for i, cell := range raw {
		if nulls[i] {
			continue
		}
		v, isInt, ok := parseNumber(cell)
		if !ok {
			return nil, false, false
		}
		nums[i] = v
		integral = integral && isInt
	}
	return nums, integral, true
}

// parseNumber accepts plain decimal integers and floats with an optional
// exponent, plus inf and infinity. Go-only syntax such as hex literals and
// digit separators is rejected.
func parseNumber(cell string) (v float64, isInt, ok bool) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.ContainsAny(s, "_xXpP") || strings.EqualFold(strings.TrimLeft(s, "+-"), "nan") {
		return 0, false, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(i), true, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, false
	}
	return f, false, true
}

func parseBools(raw []string) ([]string, bool) {
	out := make([]string, len(raw))
	for i, cell := range raw {
		canon, ok := boolTokens[cell]
		if !ok {
			return nil, false
		}
		out[i] = canon
	}
	return out, true
}

// mangleLabels names unnamed columns "Unnamed: <i>" and suffixes repeated
// labels with ".1", ".2" and so on.
func mangleLabels(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, label := range header {
		if label == "" {
			label = "Unnamed: " + strconv.Itoa(i)
		}
		if count, dup := seen[label]; dup {
			candidate := label + "." + strconv.Itoa(count)
			for {
				if _, taken := seen[candidate]; !taken {
					break
				}
				count++
				candidate = label + "." + strconv.Itoa(count)
			}
			seen[label] = count + 1
			label = candidate
		}
		seen[label]++
		out[i] = label
	}
	return out
}
