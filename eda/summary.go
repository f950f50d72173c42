package eda

import "github.com/kbukum/tabprofile/stats"

// Summary aggregates the statistics of all columns.
type Summary struct {
	Rows           int `json:"rows"`
	Columns        int `json:"columns"`
	NumericColumns int `json:"numeric_columns"`
	TextColumns    int `json:"text_columns"`
	ErrorColumns   int `json:"error_columns"`
	TotalNulls     int `json:"total_nulls"`
	// Completeness is the share of non-null cells over analyzed columns,
	// zero when there are no cells.
	Completeness float64 `json:"completeness"`
}

// Summarize builds the summary of a rows×cols table from its records.
func Summarize(rows, cols int, records map[string]stats.Record) Summary {
	s := Summary{Rows: rows, Columns: cols}
	var present, cells int
	for _, r := range records {
		switch {
		case r.Failed():
			s.ErrorColumns++
			continue
		case r.IsNumeric():
			s.NumericColumns++
		default:
			s.TextColumns++
		}
		s.TotalNulls += r.NullCount
		present += r.Count
		cells += r.Count + r.NullCount
	}
	if cells > 0 {
		s.Completeness = float64(present) / float64(cells)
	}
	return s
}
