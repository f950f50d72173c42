// Package table holds the in-memory column model the profiler works on and
// the loaders that build it from CSV and Excel inputs.
//
// A Table is a list of equally long columns. Each column is typed once at
// load time: numeric columns keep float64 values, every other column keeps
// its cell text. Missing cells are tracked per row in a null mask, so a
// column always has as many entries as the table has rows.
//
// Tables are never mutated after construction. Rename and Project return new
// tables that share column storage with the receiver.
//
//	loader := table.NewLoader(table.Options{}, storage.Config{}, log)
//	t, err := loader.Load(ctx, "data/customers.csv")
//	rows, cols := t.Shape()
package table
