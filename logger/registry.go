package logger

import (
	"sync"
)

// Component names of the loggers the profiler registers.
const (
	ComponentDAG     = "dag"
	ComponentEDA     = "eda"
	ComponentTable   = "table"
	ComponentStorage = "storage"
)

// Components lists every component RegisterDefaults seeds when called
// without names.
var Components = []string{ComponentDAG, ComponentEDA, ComponentTable, ComponentStorage}

var registry = &componentRegistry{
	loggers: make(map[string]*Logger),
}

type componentRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores the logger of a component, replacing any earlier one.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get returns the logger registered for a component. Components that were
// never registered, as in tests that skip Init, get the global logger tagged
// with their name.
func Get(name string) *Logger {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if l, ok := registry.loggers[name]; ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults derives one component logger per name from the global
// logger, so it must run after Init. With no names it seeds Components.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = Components
	}
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}
