// Package manifest is the on-disk baseline: one Record per tracked file,
// keyed by the digest of the file's absolute path.
//
// Keys cannot be mapped back to paths, so the manifest can only be queried
// for a path the caller already has in hand (usually from a tree walk).
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fim/internal/config"
	"fim/internal/digest"
	fimerrors "fim/internal/errors"
)

// Manifest reads and writes records for absolute paths.
type Manifest struct {
	dir     string
	backend Backend
}

// Exists reports whether the store directory exists. It is the only signal
// that a repository was initialized.
func Exists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// Initialize creates the store directory. An existing directory is an
// error; re-initializing is never silently accepted.
func Initialize(dir string) error {
	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return fimerrors.RepositoryExists(dir)
		}
		return fimerrors.FileSystem(dir, err)
	}
	return nil
}

// Open opens the manifest stored in dir using the named backend. dir must
// already exist; Open never creates it.
func Open(dir, backend string) (*Manifest, error) {
	if !Exists(dir) {
		return nil, fimerrors.NoRepository(dir)
	}

	var b Backend
	switch backend {
	case config.BackendFile, "":
		b = NewFileBackend(dir)
	case config.BackendBadger:
		bb, err := OpenBadger(filepath.Join(dir, "db"))
		if err != nil {
			return nil, fimerrors.Internal(err)
		}
		b = bb
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}

	return New(dir, b), nil
}

// New wraps an existing backend.
func New(dir string, b Backend) *Manifest {
	return &Manifest{dir: dir, backend: b}
}

func (m *Manifest) Dir() string {
	return m.dir
}

// Key returns the record key for absPath.
func Key(absPath string) (string, error) {
	return digest.Path(absPath)
}

// Write stores rec for absPath, replacing any previous record.
func (m *Manifest) Write(absPath string, rec Record) error {
	key, err := Key(absPath)
	if err != nil {
		return err
	}
	return m.backend.Put(key, rec.Encode())
}

// Read returns the record for absPath. A path that was never tracked yields
// ErrNotFound; an unparsable record yields an error wrapping
// ErrCorruptRecord.
func (m *Manifest) Read(absPath string) (Record, error) {
	key, err := Key(absPath)
	if err != nil {
		return Record{}, err
	}

	data, err := m.backend.Get(key)
	if err != nil {
		return Record{}, err
	}

	rec, err := ParseRecord(data)
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", key, err)
	}
	return rec, nil
}

// Remove deletes the record for absPath. Removing an absent record returns
// ErrNotFound.
func (m *Manifest) Remove(absPath string) error {
	key, err := Key(absPath)
	if err != nil {
		return err
	}
	return m.backend.Delete(key)
}

// Len counts stored records.
func (m *Manifest) Len() (int, error) {
	n := 0
	err := m.backend.Each(func(string, []byte) error {
		n++
		return nil
	})
	return n, err
}

func (m *Manifest) Close() error {
	return m.backend.Close()
}

// IsAbsent reports whether err means "no record for this path".
func IsAbsent(err error) bool {
	return errors.Is(err, ErrNotFound)
}
