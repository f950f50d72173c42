package table

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/kbukum/tabprofile/errors"
	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/storage"
)

// Loader turns an input reference into a Table.
type Loader interface {
	Load(ctx context.Context, ref string) (*Table, error)
}

// FileLoader reads local paths and s3:// or mem:// object references.
// Failures are *errors.AppError values with LOAD_ERROR code.
type FileLoader struct {
	opts       Options
	storageCfg storage.Config
	log        *logger.Logger
}

// NewLoader creates a FileLoader.
func NewLoader(opts Options, storageCfg storage.Config, log *logger.Logger) *FileLoader {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &FileLoader{opts: opts, storageCfg: storageCfg, log: log.WithComponent("table")}
}

type readerFunc func(ctx context.Context, data []byte, opts Options) (*Table, error)

func readerFor(ext string) (readerFunc, bool) {
	switch strings.ToLower(ext) {
	case ".csv":
		return func(ctx context.Context, data []byte, opts Options) (*Table, error) {
			return ReadCSV(ctx, bytes.NewReader(data), opts)
		}, true
	case ".xlsx":
		return ReadXLSX, true
	case ".xls":
		return ReadXLS, true
	}
	return nil, false
}

// Load checks that ref exists, picks a reader from its extension and parses
// it. Existence is checked before the extension.
func (l *FileLoader) Load(ctx context.Context, ref string) (*Table, error) {
	var (
		ext   string
		fetch func() ([]byte, error)
	)

	if storage.IsRemote(ref) {
		loc, key, err := storage.SplitObject(ref)
		if err != nil {
			return nil, errors.LoadFailed(err)
		}
		st, err := storage.OpenLocation(ctx, l.storageCfg, loc, l.log)
		if err != nil {
			return nil, errors.LoadFailed(err)
		}
		ok, err := st.Exists(ctx, key)
		if err != nil {
			return nil, errors.LoadFailed(err)
		}
		if !ok {
			return nil, errors.FileNotFound(ref)
		}
		ext = suffix(path.Base(key))
		fetch = func() ([]byte, error) {
			return storage.ReadAll(ctx, st, key, l.storageCfg.MaxObjectSize)
		}
	} else {
		if _, err := os.Stat(ref); err != nil {
			return nil, errors.FileNotFound(ref)
		}
		ext = suffix(filepath.Base(ref))
		fetch = func() ([]byte, error) { return os.ReadFile(ref) }
	}

	read, ok := readerFor(ext)
	if !ok {
		return nil, errors.UnsupportedFormat(ext)
	}

	data, err := fetch()
	if err != nil {
		return nil, errors.LoadFailed(err)
	}
	t, err := read(ctx, data, l.opts)
	if err != nil {
		return nil, errors.LoadFailed(err)
	}
	t.Source = ref
	t.Checksum = xxh3.Hash(data)

	rows, cols := t.Shape()
	l.log.Debug("table loaded", logger.Fields("input", ref, "rows", rows, "columns", cols, "bytes", len(data)))
	return t, nil
}

// suffix returns the extension of a file name including the dot, keeping
// its case. Names without a dot, dot files and names ending in a dot have
// no suffix.
func suffix(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}
