package dag

import (
	"fmt"
	"maps"
	"sort"
	"sync"
)

// Patch is a partial state update returned by a node.
type Patch map[string]any

// Reducer folds an update into the current value of a key. current is nil
// when the key is not set yet. Reducers must not modify their arguments and
// must be associative, since fan-out patches are folded before they reach
// the state.
type Reducer func(current, update any) any

// MapUnion returns a reducer for map[K]V values. Keys of the update win over
// existing keys.
func MapUnion[K comparable, V any]() Reducer {
	return func(current, update any) any {
		cur, _ := current.(map[K]V)
		upd, _ := update.(map[K]V)
		out := make(map[K]V, len(cur)+len(upd))
		maps.Copy(out, cur)
		maps.Copy(out, upd)
		return out
	}
}

// Schema declares per-key reducers. Keys without a reducer are replaced by
// each update.
type Schema struct {
	reducers map[string]Reducer
}

// NewSchema creates an empty Schema.
func NewSchema() *Schema {
	return &Schema{reducers: make(map[string]Reducer)}
}

// WithReducer registers r for key and returns the schema.
func (s *Schema) WithReducer(key string, r Reducer) *Schema {
	s.reducers[key] = r
	return s
}

func (s *Schema) reduce(key string, current any, present bool, update any) any {
	if s == nil {
		return update
	}
	r, ok := s.reducers[key]
	if !ok {
		return update
	}
	if !present {
		current = nil
	}
	return r(current, update)
}

// Fold merges patches into one, applying reducers key by key in order.
func (s *Schema) Fold(patches ...Patch) Patch {
	out := Patch{}
	for _, p := range patches {
		for k, v := range p {
			cur, ok := out[k]
			out[k] = s.reduce(k, cur, ok, v)
		}
	}
	return out
}

// State is a thread-safe key-value store for passing data between nodes,
// with a terminal failure slot.
type State struct {
	mu      sync.RWMutex
	schema  *Schema
	data    map[string]any
	failure error
}

// NewState creates an empty State. schema may be nil.
func NewState(schema *Schema) *State {
	return &State{schema: schema, data: make(map[string]any)}
}

// Schema returns the state's reducer schema, possibly nil.
func (s *State) Schema() *Schema { return s.schema }

// Get retrieves a value by key. Returns false if the key does not exist.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores a value by key, bypassing reducers. It is meant for seeding
// inputs before execution.
func (s *State) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Keys returns the set keys in sorted order.
func (s *State) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply merges p into the state through the schema reducers.
func (s *State) Apply(p Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range p {
		cur, ok := s.data[k]
		s.data[k] = s.schema.reduce(k, cur, ok, v)
	}
}

// Fail records err as the state's failure. Only the first failure is kept.
func (s *State) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure == nil {
		s.failure = err
	}
}

// Failure returns the recorded failure, or nil.
func (s *State) Failure() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// Failed reports whether a failure has been recorded.
func (s *State) Failed() bool { return s.Failure() != nil }

// Snapshot returns a shallow copy of the state sharing the schema. Values
// are shared, so they must be treated as read-only.
func (s *State) Snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &State{schema: s.schema, data: maps.Clone(s.data), failure: s.failure}
}

// Port is a compile-time typed accessor for State.
// It prevents type mismatches between nodes at compile time.
type Port[T any] struct {
	Key string
}

// Lookup returns the value behind the port and whether it is set with the
// expected type.
func (p Port[T]) Lookup(state *State) (T, bool) {
	raw, ok := state.Get(p.Key)
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// Put stores value under the port's key in patch and returns the patch.
// A nil patch is allocated.
func (p Port[T]) Put(patch Patch, value T) Patch {
	if patch == nil {
		patch = Patch{}
	}
	patch[p.Key] = value
	return patch
}

// Read retrieves a typed value from state using a Port.
// Returns an error if the key is missing or the type doesn't match.
func Read[T any](state *State, port Port[T]) (T, error) {
	var zero T
	raw, ok := state.Get(port.Key)
	if !ok {
		return zero, fmt.Errorf("dag: state key %q not found", port.Key)
	}
	val, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("dag: state key %q: expected %T, got %T", port.Key, zero, raw)
	}
	return val, nil
}

// Write stores a typed value into state using a Port, bypassing reducers.
func Write[T any](state *State, port Port[T], value T) {
	state.Set(port.Key, value)
}
