package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/util"
)

// Factory creates a Storage rooted at loc.
type Factory func(ctx context.Context, cfg Config, loc Location, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a backend factory for the given provider name.
// Backend packages call this from an init function.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Open creates the Storage for a location reference.
func Open(ctx context.Context, cfg Config, ref string, log *logger.Logger) (Storage, error) {
	loc, err := ParseLocation(ref)
	if err != nil {
		return nil, err
	}
	return OpenLocation(ctx, cfg, loc, log)
}

// OpenLocation creates the Storage for a parsed location.
func OpenLocation(ctx context.Context, cfg Config, loc Location, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()

	factoriesMu.RLock()
	f, ok := factories[loc.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", loc.Provider)
	}

	l := log.WithComponent("storage")
	l.Debug("opening storage", logger.Fields(
		"provider", loc.Provider,
		"location", loc.String(),
		"access_key", util.MaskSecret(cfg.AccessKey, 4),
	))
	return f(ctx, cfg, loc, l)
}
