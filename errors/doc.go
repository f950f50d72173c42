// Package errors provides the structured error type used across tabprofile.
// Every failure that ends up in a pipeline state is an *AppError carrying a
// machine-readable code, a human-readable message and optional details.
package errors
