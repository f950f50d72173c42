package dag

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Pipeline is a composable, YAML-defined graph definition.
type Pipeline struct {
	// Name is the pipeline identifier.
	Name string `yaml:"name"`
	// Description is free text shown in diagrams and logs.
	Description string `yaml:"description,omitempty"`
	// Includes lists sub-pipeline names to compose (recursive).
	Includes []string `yaml:"includes,omitempty"`
	// Nodes defines the pipeline's node specifications.
	Nodes []NodeDef `yaml:"nodes"`
}

// NodeDef defines a node within a pipeline.
type NodeDef struct {
	// Component is the registry lookup key for this node.
	Component string `yaml:"component"`
	// DependsOn lists node names this node depends on.
	DependsOn []string `yaml:"depends_on,omitempty"`
}

// ParsePipeline decodes a pipeline definition.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("dag: parsing pipeline: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("dag: pipeline definition has no name")
	}
	for i, n := range p.Nodes {
		if n.Component == "" {
			return nil, fmt.Errorf("dag: pipeline %q: node %d has no component", p.Name, i)
		}
	}
	return &p, nil
}
