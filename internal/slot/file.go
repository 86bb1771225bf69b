package slot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cdshelf/internal/fileutil"
)

// File stores a slot as <dir>/<key>.json, replaced atomically on every write.
type File struct {
	path string
}

// NewFile returns a file slot rooted at dir.
func NewFile(dir, key string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file slot requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create slot directory %q: %w", dir, err)
	}
	return &File{path: filepath.Join(dir, key+".json")}, nil
}

// Path returns the file backing the slot.
func (f *File) Path() string {
	return f.path
}

func (f *File) Read(ctx context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot file: %w", err)
	}
	return data, true, nil
}

func (f *File) Write(ctx context.Context, data []byte) error {
	if err := ensureContext(ctx).Err(); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(f.path, data, 0o644)
}

func (f *File) Close() error { return nil }
