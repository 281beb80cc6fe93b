// internal/state/storage.go
package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/sharedctx/internal/types"
)

const docExt = ".json"

// FileStorage stores one JSON document per key at <root>/<key>.json.
// It is stateless: every call goes to disk, so several instances rooted at the
// same directory observe each other's writes.
type FileStorage struct {
	root string
}

var _ types.Storage = (*FileStorage)(nil)

// NewFileStorage creates a FileStorage rooted at the given directory. The
// directory is created on first write.
func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

// Root returns the directory backing this storage.
func (f *FileStorage) Root() string {
	return f.root
}

func (f *FileStorage) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: key %q", ErrInvalid, key)
	}
	return filepath.Join(f.root, key+docExt), nil
}

func (f *FileStorage) Get(_ context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, key, err)
	}
	return data, nil
}

// Put writes data atomically: temp file in the same directory, then rename.
func (f *FileStorage) Put(_ context.Context, key string, data []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("%w: create dir: %v", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(f.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorage, key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrStorage, key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrStorage, key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrStorage, key, err)
	}
	return nil
}

func (f *FileStorage) Delete(_ context.Context, key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return fmt.Errorf("%w: delete %s: %v", ErrStorage, key, err)
	}
	return nil
}

// List returns the keys of all documents under root. A missing root yields
// an empty list. Order follows the directory listing.
func (f *FileStorage) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: list %s: %v", ErrStorage, f.root, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, docExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, docExt))
	}
	return keys, nil
}
