package storage

import (
	"context"
	"io"
)

// Storage defines the object operations tabprofile needs.
type Storage interface {
	// Upload writes data from reader to key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download returns a reader for the object at key. A missing object
	// yields an error matching fs.ErrNotExist.
	// The caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns an address for the object at key, for display.
	URL(ctx context.Context, key string) (string, error)
}
