package report

import (
	"github.com/kbukum/tabprofile/eda"
	"github.com/kbukum/tabprofile/stats"
	"github.com/kbukum/tabprofile/util"
)

// Column is the record of one normalized column.
type Column struct {
	Name string `json:"name"`
	stats.Record
}

// Columns returns the records of out in original column order. A
// normalized label shared by several original labels is listed once.
func Columns(out *eda.Outcome) []Column {
	mapping := out.Mapping()
	records := out.Statistics()
	if mapping == nil || records == nil {
		return nil
	}

	cols := make([]Column, 0, len(records))
	for _, name := range util.Unique(mapping.Normalized()) {
		if r, ok := records[name]; ok {
			cols = append(cols, Column{Name: name, Record: r})
		}
	}
	return cols
}
