// Package local implements storage.Storage on a local directory.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(_ context.Context, _ storage.Config, loc storage.Location, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(loc.Prefix)
	})
}

// Storage implements storage.Storage using the local filesystem.
type Storage struct {
	basePath string
}

// NewStorage creates a local storage rooted at basePath, creating the
// directory when missing.
func NewStorage(basePath string) (*Storage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Storage{basePath: abs}, nil
}

func (s *Storage) resolve(key string) string {
	return filepath.Join(s.basePath, filepath.Clean("/"+key))
}

// Upload writes data from reader to a local file, replacing it atomically.
func (s *Storage) Upload(_ context.Context, key string, reader io.Reader) error {
	fullPath := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: create file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := io.Copy(tmp, reader); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("storage: rename file: %w", err)
	}
	return nil
}

// Download returns a reader for the local file at key.
func (s *Storage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: file not found: %s: %w", key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

// Exists checks whether a local file exists.
func (s *Storage) Exists(_ context.Context, key string) (bool, error) {
	info, err := os.Stat(s.resolve(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat file: %w", err)
	}
	return !info.IsDir(), nil
}

// URL returns a file:// URL for the local file.
func (s *Storage) URL(_ context.Context, key string) (string, error) {
	u := &url.URL{Scheme: "file", Path: s.resolve(key)}
	return u.String(), nil
}

// compile-time check
var _ storage.Storage = (*Storage)(nil)
