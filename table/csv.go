package table

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/kbukum/tabprofile/pipeline"
)

// csvBuffer is the number of parsed records held ahead of the table builder.
const csvBuffer = 256

// ReadCSV parses a comma-separated input whose first row is the header.
// Blank lines are skipped. Quotes are read leniently.
func ReadCSV(ctx context.Context, r io.Reader, opts Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.comma()
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records := pipeline.FromSeq(func(yield func(record, error) bool) {
		for {
			fields, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(record{}, err)
				return
			}
			line, _ := cr.FieldPos(0)
			if !yield(record{fields: fields, line: line}, nil) {
				return
			}
		}
	})
	return build(ctx, pipeline.Buffer(records, csvBuffer), opts, true)
}
