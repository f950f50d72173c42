package main

import (
	"fmt"

	"github.com/kbukum/tabprofile/config"
	"github.com/kbukum/tabprofile/eda"
	"github.com/kbukum/tabprofile/observability"
	"github.com/kbukum/tabprofile/storage"
	"github.com/kbukum/tabprofile/util"
	"github.com/kbukum/tabprofile/validation"
)

const serviceName = "tabprofile"

// AppConfig is the configuration of the tabprofile binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Pipeline      eda.Config           `yaml:"pipeline" mapstructure:"pipeline"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Output        OutputConfig         `yaml:"output" mapstructure:"output"`
}

// OutputConfig selects what a run writes besides the console report.
type OutputConfig struct {
	// JSON prints the JSON document instead of the text report.
	JSON bool `yaml:"json" mapstructure:"json"`
	// Location receives <run_id>.json: a local directory, s3://bucket/prefix
	// or mem://name/prefix. Empty disables publishing.
	Location string `yaml:"location" mapstructure:"location"`
	// Diagram is the file or object the Mermaid pipeline diagram is written
	// to. Empty disables the export.
	Diagram string `yaml:"diagram" mapstructure:"diagram"`
}

// ApplyDefaults fills in defaults of every section.
func (c *AppConfig) ApplyDefaults() {
	c.Name = util.Coalesce(c.Name, serviceName)
	c.ServiceConfig.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the base service fields and the tagged sections.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate checks that the publish location names a supported backend.
func (o OutputConfig) Validate() error {
	_, err := storage.ParseLocation(o.Location)
	return validation.New().
		Custom(o.Location == "" || err == nil, "output.location", "must be a directory, s3://bucket/prefix or mem://name/prefix").
		Validate()
}
