// Package validation checks configuration and command-line input.
//
// Struct tag validation (go-playground/validator) covers configuration
// sections; the programmatic Validator collects errors for ad-hoc checks
// such as CLI arguments. Both report an errors.AppError with code
// INVALID_INPUT whose details list the failing fields.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    MaxParallel int    `mapstructure:"max_parallel" validate:"gte=0"`
//	    TaskErrors  string `mapstructure:"task_errors" validate:"oneof=isolate fail"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("path", path)
//	err := v.Validate()
package validation
