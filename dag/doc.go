// Package dag provides a DAG (Directed Acyclic Graph) execution engine for
// typed, state-passing pipelines.
//
// Nodes read a shared State and return a Patch. The engine runs the graph
// level by level: nodes of one level run concurrently against the same
// state, and their patches are merged through the state's reducers once the
// whole level is done, in node name order.
//
// A Fanout node dispatches one task per Send, runs the tasks on a bounded
// worker pool and folds their patches in dispatch order. This is the
// fan-out / fan-in barrier: nothing downstream runs before every task has
// finished.
//
// Node errors and panics never escape Execute. They are recorded as the
// state's failure, after which every remaining node is skipped.
//
// Graphs can be declared in YAML and resolved against a Registry:
//
//	name: ingest
//	nodes:
//	  - component: load
//	  - component: clean
//	    depends_on: [load]
package dag
