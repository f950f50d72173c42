package dag

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Node is the execution unit in a DAG.
type Node interface {
	Name() string
	Run(ctx context.Context, state *State) (Patch, error)
}

// StepFunc is the body of a step.
type StepFunc func(ctx context.Context, state *State) (Patch, error)

// NewStep creates a Node from a function.
func NewStep(name string, fn StepFunc) Node {
	return &step{name: name, fn: fn}
}

type step struct {
	name string
	fn   StepFunc
}

func (s *step) Name() string { return s.name }

func (s *step) Run(ctx context.Context, state *State) (Patch, error) {
	return s.fn(ctx, state)
}

// TypedConfig configures a step that reads one typed input and writes one
// typed output.
type TypedConfig[I, O any] struct {
	// Name is the unique node identifier in the graph.
	Name string
	// Extract reads inputs from state.
	Extract func(state *State) (I, error)
	// Fn computes the output.
	Fn func(ctx context.Context, input I) (O, error)
	// Output is the port where the result is written.
	Output Port[O]
}

// Typed bridges a typed function into a DAG Node.
func Typed[I, O any](cfg TypedConfig[I, O]) Node {
	return &typedNode[I, O]{cfg: cfg}
}

type typedNode[I, O any] struct {
	cfg TypedConfig[I, O]
}

func (n *typedNode[I, O]) Name() string { return n.cfg.Name }

func (n *typedNode[I, O]) Run(ctx context.Context, state *State) (Patch, error) {
	input, err := n.cfg.Extract(state)
	if err != nil {
		return nil, err
	}
	output, err := n.cfg.Fn(ctx, input)
	if err != nil {
		return nil, err
	}
	return n.cfg.Output.Put(nil, output), nil
}

// PanicError is returned for a node or task that panicked.
type PanicError struct {
	Node  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("dag: node %q panicked: %v", e.Node, e.Value)
}

// runSafe runs node, converting a panic into a *PanicError.
func runSafe(ctx context.Context, node Node, state *State) (patch Patch, err error) {
	defer func() {
		if r := recover(); r != nil {
			patch = nil
			err = &PanicError{Node: node.Name(), Value: r, Stack: debug.Stack()}
		}
	}()
	return node.Run(ctx, state)
}
