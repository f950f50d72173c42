package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// UploadBytes stores data at key.
func UploadBytes(ctx context.Context, s Storage, key string, data []byte) error {
	return s.Upload(ctx, key, bytes.NewReader(data))
}

// ReadAll downloads the object at key into memory. Objects larger than
// maxSize are rejected; maxSize <= 0 means DefaultMaxObjectSize.
func ReadAll(ctx context.Context, s Storage, key string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxObjectSize
	}
	rc, err := s.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("storage: object %s exceeds %d bytes", key, maxSize)
	}
	return data, nil
}
