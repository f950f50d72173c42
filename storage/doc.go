// Package storage provides object storage with pluggable backends. It is used
// to read s3:// inputs and to publish report and diagram artifacts.
//
// A location string selects the backend:
//
//	s3://bucket/prefix   Amazon S3 or an S3-compatible service (storage/s3)
//	/some/dir, ./out     local filesystem directory (storage/local)
//	mem://name           in-process map, for tests (storage/memory)
//
// Backends register themselves from an init function, so the binary imports
// the ones it needs for side effects:
//
//	import _ "github.com/kbukum/tabprofile/storage/s3"
//
// Keys passed to a Storage are relative to the location's prefix.
package storage
