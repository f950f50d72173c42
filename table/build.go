package table

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/tabprofile/pipeline"
)

const utf8BOM = "\uFEFF"

// ErrNoColumns is returned when an input has no header row.
var ErrNoColumns = errors.New("No columns to parse from file")

// record is one parsed input row. line is the 1-based source line, or the
// sheet row for spreadsheets.
type record struct {
	fields []string
	line   int
}

// builder accumulates raw cells column by column.
type builder struct {
	opts   Options
	strict bool

	header []string
	cells  [][]string
	rows   int
}

// build consumes records: the first non-empty record is the header, the
// rest are data rows. Short rows are padded with missing cells. Long rows
// are an error when strict is set and widen the header otherwise.
func build(ctx context.Context, records *pipeline.Pipeline[record], opts Options, strict bool) (*Table, error) {
	b := &builder{opts: opts, strict: strict}
	nonEmpty := pipeline.Filter(records, func(r record) bool { return len(r.fields) > 0 })
	if err := pipeline.ForEach(ctx, nonEmpty, b.add); err != nil {
		return nil, err
	}
	if b.header == nil {
		return nil, ErrNoColumns
	}
	return b.table()
}

func (b *builder) add(_ context.Context, r record) error {
	if b.header == nil {
		b.header = append([]string(nil), r.fields...)
		b.header[0] = strings.TrimPrefix(b.header[0], utf8BOM)
		b.cells = make([][]string, len(b.header))
		return nil
	}

	if len(r.fields) > len(b.header) {
		if b.strict {
			return fmt.Errorf("Error tokenizing data. Expected %d fields in line %d, saw %d",
				len(b.header), r.line, len(r.fields))
		}
		for len(b.header) < len(r.fields) {
			b.header = append(b.header, "")
			b.cells = append(b.cells, make([]string, b.rows))
		}
	}

	for i := range b.header {
		cell := ""
		if i < len(r.fields) {
			cell = r.fields[i]
		}
		b.cells[i] = append(b.cells[i], cell)
	}
	b.rows++
	return nil
}

func (b *builder) table() (*Table, error) {
	labels := mangleLabels(b.header)
	nullTokens := b.opts.nullSet()
	columns := make([]*Column, len(labels))
	for i, label := range labels {
		columns[i] = inferColumn(label, b.cells[i], nullTokens)
	}
	return New(columns...)
}
