package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lazypower/lineage/internal/api"
	"github.com/lazypower/lineage/internal/graph"
)

// File is a graph provider backed by one family file.
type File struct {
	Path  string
	Codec Codec
}

// NewFile returns a provider for path, choosing the codec by extension.
func NewFile(path string) (*File, error) {
	c, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Codec: c}, nil
}

// LoadGraph reads the family file. A missing file is an empty graph.
func (f *File) LoadGraph(ctx context.Context) (graph.Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return graph.Snapshot{}, nil
	}
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("read %s: %w", f.Path, err)
	}
	fam, err := f.Codec.Decode(bytes.NewReader(data))
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	return fam.Snapshot()
}

// SaveGraph writes the family file atomically: a temp file in the same
// directory is renamed over the target.
func (f *File) SaveGraph(ctx context.Context, s graph.Snapshot) error {
	var buf bytes.Buffer
	if err := f.Codec.Encode(api.FromSnapshot(s), &buf); err != nil {
		return err
	}
	return WriteAtomic(f.Path, buf.Bytes())
}

// WriteAtomic replaces path with data via a temp file and rename.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
