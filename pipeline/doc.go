// Package pipeline provides composable, pull-based iterator operators.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain, or ForEach. Each stage pulls from the previous one on demand, which
// gives natural backpressure without explicit flow control.
//
// Table loaders expose their rows as pipelines, buffered so parsing runs
// ahead of table building, and the DAG executor runs fan-out tasks through
// ParallelOrdered.
//
// # Operators
//
// Synchronous (single-goroutine):
//
//   - Map: transform each value
//   - Filter: keep values matching a predicate
//
// Concurrent (multi-goroutine):
//
//   - Buffer: decouple producer and consumer with a buffered channel
//   - Parallel: concurrent Map with a worker pool (order NOT preserved)
//   - ParallelOrdered: concurrent Map that yields results in input order
//
// # Usage
//
//	rows := pipeline.FromSlice(records)
//	nonBlank := pipeline.Filter(rows, func(r []string) bool { return len(r) > 0 })
//	got, err := pipeline.Collect(ctx, nonBlank)
package pipeline
