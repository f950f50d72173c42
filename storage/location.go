package storage

import (
	"fmt"
	"path"
	"strings"
)

// Provider names, matching location schemes.
const (
	ProviderLocal  = "local"
	ProviderS3     = "s3"
	ProviderMemory = "mem"
)

// Location is a parsed storage location.
type Location struct {
	// Provider is the backend name.
	Provider string
	// Bucket is the S3 bucket or memory store name; empty for local.
	Bucket string
	// Prefix is the key prefix inside the bucket, or the local directory.
	Prefix string
}

// String renders the location back to its reference form.
func (l Location) String() string {
	if l.Provider == ProviderLocal {
		return l.Prefix
	}
	if l.Prefix == "" {
		return l.Provider + "://" + l.Bucket
	}
	return l.Provider + "://" + l.Bucket + "/" + l.Prefix
}

// IsRemote reports whether ref names an object behind a storage backend
// rather than a local path.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, ProviderS3+"://") || strings.HasPrefix(ref, ProviderMemory+"://")
}

// ParseLocation parses "s3://bucket/prefix", "mem://name/prefix" or a local
// directory path.
func ParseLocation(ref string) (Location, error) {
	scheme, rest, ok := strings.Cut(ref, "://")
	if !ok {
		if ref == "" {
			return Location{}, fmt.Errorf("storage: empty location")
		}
		return Location{Provider: ProviderLocal, Prefix: ref}, nil
	}

	switch scheme {
	case ProviderS3, ProviderMemory:
	case "file":
		return Location{Provider: ProviderLocal, Prefix: rest}, nil
	default:
		return Location{}, fmt.Errorf("storage: unsupported scheme %q", scheme)
	}

	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("storage: missing bucket in %q", ref)
	}
	return Location{Provider: scheme, Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

// SplitObject splits an object reference such as "s3://bucket/dir/data.csv"
// into its parent location and the object key.
func SplitObject(ref string) (Location, string, error) {
	loc, err := ParseLocation(ref)
	if err != nil {
		return Location{}, "", err
	}
	if loc.Prefix == "" {
		return Location{}, "", fmt.Errorf("storage: missing object key in %q", ref)
	}
	dir, key := path.Split(loc.Prefix)
	loc.Prefix = strings.TrimSuffix(dir, "/")
	if loc.Provider == ProviderLocal && loc.Prefix == "" {
		loc.Prefix = "."
	}
	return loc, key, nil
}

// Join joins a key below a prefix using forward slashes.
func Join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}
