// Package eda profiles one tabular file with a dag pipeline.
//
// The pipeline loads the file, lists and normalizes its column labels, fans
// out one analysis task per column and merges the per-column records into
// the statistics accumulator before a final summary step runs:
//
//	load_file → identify_headers → normalize_headers → analyze_column (fan-out) → aggregate_statistics
//
// Steps never return Go errors to the caller. A failed step records the
// failure in the pipeline state and every later step is skipped.
//
//	p, err := eda.New(cfg, eda.WithLoader(loader))
//	out, err := p.Run(ctx, "data.csv")
//	if out.Failed() {
//	    fmt.Println(out.FailureMessage())
//	}
package eda
