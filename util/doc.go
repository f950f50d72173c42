// Package util provides small generic helpers shared by the tabprofile
// packages: slice and map utilities, string helpers and column label
// normalization.
package util
