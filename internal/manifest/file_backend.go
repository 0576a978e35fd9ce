package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"fim/internal/digest"
)

// FileBackend stores one file per key directly under the store directory:
//
//	.fim/
//	  3f2c...e1  (contents: "<mtime> <size> <digest>")
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (b *FileBackend) Put(key string, value []byte) error {
	if err := safeWrite(b.path(key), value, 0644); err != nil {
		return fmt.Errorf("writing record %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading record %s: %w", key, err)
	}
	return data, nil
}

func (b *FileBackend) Delete(key string) error {
	err := os.Remove(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("removing record %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Each(fn func(key string, value []byte) error) error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return fmt.Errorf("listing store: %w", err)
	}

	for _, e := range entries {
		// Skips temp files, the badger directory and anything else that
		// is not a record.
		if !e.Type().IsRegular() || !digest.Valid(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(b.dir, e.Name()))
		if err != nil {
			return fmt.Errorf("reading record %s: %w", e.Name(), err)
		}
		if err := fn(e.Name(), data); err != nil {
			return err
		}
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key)
}

// safeWrite writes data to path atomically: tempfile -> fsync -> rename.
// The tempfile lives in the same directory so the rename stays on one
// filesystem; readers never observe a half-written record.
func safeWrite(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err = f.Chmod(perm); err != nil {
		f.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp to target: %w", err)
	}
	return nil
}
