package dag

import (
	"sync"

	"github.com/kbukum/tabprofile/util"
)

// Registry provides named node lookup for dynamic graph construction.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Node
}

// NewRegistry creates a Registry holding nodes.
func NewRegistry(nodes ...Node) *Registry {
	r := &Registry{nodes: make(map[string]Node)}
	r.Register(nodes...)
	return r
}

// Register adds nodes under their names. A node replaces any node
// registered under the same name.
func (r *Registry) Register(nodes ...Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range nodes {
		r.nodes[n.Name()] = n
	}
}

// Get retrieves a node by name.
func (r *Registry) Get(name string) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[name]
	return n, ok
}

// List returns sorted names of all registered nodes.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return util.SortedKeys(r.nodes)
}
