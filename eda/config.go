package eda

import (
	"time"

	"github.com/kbukum/tabprofile/table"
	"github.com/kbukum/tabprofile/validation"
)

// TaskErrorPolicy decides what a failed column analysis does to the run.
type TaskErrorPolicy string

// Task error policies.
const (
	// TaskErrorsIsolate records the failure in the column's statistics
	// entry and lets the run continue.
	TaskErrorsIsolate TaskErrorPolicy = "isolate"
	// TaskErrorsFail fails the run.
	TaskErrorsFail TaskErrorPolicy = "fail"
)

// Config configures the profiling pipeline.
type Config struct {
	// MaxParallel bounds concurrent column tasks (0 = one per column).
	MaxParallel int `yaml:"max_parallel" mapstructure:"max_parallel" validate:"gte=0"`
	// TaskTimeout bounds the whole column analysis stage (0 = none).
	TaskTimeout time.Duration `yaml:"task_timeout" mapstructure:"task_timeout" validate:"gte=0"`
	// CollisionPolicy handles labels that normalize to the same name.
	CollisionPolicy CollisionPolicy `yaml:"collision_policy" mapstructure:"collision_policy" validate:"omitempty,oneof=overwrite suffix error"`
	// TaskErrors handles failed column analyses.
	TaskErrors TaskErrorPolicy `yaml:"task_errors" mapstructure:"task_errors" validate:"omitempty,oneof=isolate fail"`
	// Table configures file parsing.
	Table table.Options `yaml:"table" mapstructure:"table"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.CollisionPolicy == "" {
		c.CollisionPolicy = CollisionOverwrite
	}
	if c.TaskErrors == "" {
		c.TaskErrors = TaskErrorsIsolate
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
