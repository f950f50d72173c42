// Package memory implements storage.Storage on an in-process map. Stores are
// addressed as mem://<name>; opening the same name twice yields the same
// store, which lets tests inspect what a run published.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"sync"

	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/storage"
)

var (
	storesMu sync.Mutex
	stores   = make(map[string]*Store)
)

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(_ context.Context, _ storage.Config, loc storage.Location, _ *logger.Logger) (storage.Storage, error) {
		return &view{store: Named(loc.Bucket), prefix: loc.Prefix}, nil
	})
}

// Named returns the store registered under name, creating it if needed.
func Named(name string) *Store {
	storesMu.Lock()
	defer storesMu.Unlock()
	s, ok := stores[name]
	if !ok {
		s = NewStore()
		stores[name] = s
	}
	return s
}

// Store is a concurrency-safe in-memory object store.
type Store struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{files: make(map[string][]byte)}
}

// Upload stores the contents of reader at key.
func (s *Store) Upload(_ context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("storage: read upload body: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return nil
}

// Download returns a reader over a copy of the object at key.
func (s *Store) Download(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("storage: object not found: %s: %w", key, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), data...))), nil
}

// Exists checks whether key is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[key]
	return ok, nil
}

// URL returns a mem:// address for key.
func (s *Store) URL(_ context.Context, key string) (string, error) {
	return "mem://" + key, nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset removes all objects.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
}

// view scopes a Store to a key prefix.
type view struct {
	store  *Store
	prefix string
}

func (v *view) Upload(ctx context.Context, key string, r io.Reader) error {
	return v.store.Upload(ctx, storage.Join(v.prefix, key), r)
}

func (v *view) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return v.store.Download(ctx, storage.Join(v.prefix, key))
}

func (v *view) Exists(ctx context.Context, key string) (bool, error) {
	return v.store.Exists(ctx, storage.Join(v.prefix, key))
}

func (v *view) URL(ctx context.Context, key string) (string, error) {
	return v.store.URL(ctx, storage.Join(v.prefix, key))
}

var (
	_ storage.Storage = (*Store)(nil)
	_ storage.Storage = (*view)(nil)
)
