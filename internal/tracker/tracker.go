// internal/tracker/tracker.go
package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fim/internal/digest"
	fimerrors "fim/internal/errors"
	"fim/internal/manifest"
	"fim/internal/walk"

	"go.uber.org/zap"
)

// Tracker records baselines for files and compares the live tree against
// them. It is not safe for concurrent use, and nothing coordinates two
// processes working on the same store.
type Tracker struct {
	Manifest *manifest.Manifest
	Skip     []string // directory names never walked
	Logger   *zap.Logger
}

// Result summarizes an add or untrack run.
type Result struct {
	Files    int     // files recorded or records removed
	Failures []error // per-entry problems that were skipped
}

func New(m *manifest.Manifest, logger *zap.Logger) (*Tracker, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tracker{
		Manifest: m,
		Skip:     []string{filepath.Base(m.Dir())},
		Logger:   logger,
	}, nil
}

// Add records the current fingerprint of every regular file under path,
// overwriting earlier records. Unreadable entries are logged and skipped;
// only an inaccessible path argument fails the whole call.
func (t *Tracker) Add(path string) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", path, err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fimerrors.FileSystem(absPath, err)
	}

	result := &Result{}
	for p, err := range walk.Files(absPath, t.Skip...) {
		if err != nil {
			t.fail(result, p, err)
			continue
		}
		if t.inStore(p) {
			continue
		}

		if err := t.trackFile(p); err != nil {
			t.fail(result, p, err)
			continue
		}
		result.Files++
	}

	t.Logger.Info("add finished",
		zap.String("path", absPath),
		zap.Int("files", result.Files),
		zap.Int("failures", len(result.Failures)))

	return result, nil
}

// trackFile fingerprints one file and writes its record.
func (t *Tracker) trackFile(absPath string) error {
	info, err := os.Stat(absPath)
	if err != nil {
		return fimerrors.FileSystem(absPath, err)
	}

	sum, err := digest.File(absPath)
	if err != nil {
		return fimerrors.FileSystem(absPath, err)
	}

	rec := manifest.Record{
		ModTime: info.ModTime().Unix(),
		Size:    info.Size(),
		Digest:  sum,
	}
	if err := t.Manifest.Write(absPath, rec); err != nil {
		return fmt.Errorf("recording %s: %w", absPath, err)
	}

	t.Logger.Debug("tracked file",
		zap.String("path", absPath),
		zap.Int64("size", rec.Size),
		zap.String("digest", rec.Digest))
	return nil
}

// Untrack removes the records for path. A path that no longer exists is
// removed by key; an existing directory has every file below it removed.
func (t *Tracker) Untrack(path string) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", path, err)
	}

	result := &Result{}

	if _, err := os.Stat(absPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, fimerrors.FileSystem(absPath, err)
		}
		if err := t.Manifest.Remove(absPath); err != nil {
			if manifest.IsAbsent(err) {
				return nil, fimerrors.FileSystem(absPath, err)
			}
			return nil, err
		}
		result.Files++
		return result, nil
	}

	for p, err := range walk.Files(absPath, t.Skip...) {
		if err != nil {
			t.fail(result, p, err)
			continue
		}
		if err := t.Manifest.Remove(p); err != nil {
			if !manifest.IsAbsent(err) {
				t.fail(result, p, err)
			}
			continue
		}
		result.Files++
	}

	return result, nil
}

func (t *Tracker) fail(result *Result, path string, err error) {
	t.Logger.Warn("skipping entry", zap.String("path", path), zap.Error(err))
	result.Failures = append(result.Failures, err)
}

// inStore reports whether p lies inside the manifest store.
func (t *Tracker) inStore(p string) bool {
	rel, err := filepath.Rel(t.Manifest.Dir(), p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
