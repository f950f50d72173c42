// Package report renders the outcome of a profiling run, as console text in
// the classic EDA results layout or as a JSON document.
//
// Columns are always rendered in original column order by walking the label
// mapping; a failed run renders only its error.
package report
