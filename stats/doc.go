// Package stats computes descriptive statistics for a single table column.
//
// Numeric columns get min, max, mean, median, sample standard deviation and
// the 25th and 75th percentiles (linear interpolation between closest
// ranks). Text columns get the most common value and the minimum, maximum
// and average length in Unicode code points. Every record carries the storage
// type, the non-null count, the null count and the number of distinct
// non-null values.
package stats
