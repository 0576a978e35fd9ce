package tracker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"fim/internal/digest"
	fimerrors "fim/internal/errors"
	"fim/internal/manifest"
	"fim/internal/walk"
	"fim/shared/types"

	"go.uber.org/zap"
)

// Report is the outcome of a status run. Modified and Untracked are
// disjoint and sorted; files in neither set are tracked and unchanged.
type Report struct {
	Modified  []string
	Untracked []string
	Unchanged int
	Failures  []error
}

// Clean reports whether nothing was modified or untracked.
func (r *Report) Clean() bool {
	return len(r.Modified) == 0 && len(r.Untracked) == 0
}

// Status walks path and classifies every regular file against the
// manifest. Deleted tracked files are not detected.
func (t *Tracker) Status(path string) (*Report, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", path, err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fimerrors.FileSystem(absPath, err)
	}

	report := &Report{}
	for p, err := range walk.Files(absPath, t.Skip...) {
		if err != nil {
			t.Logger.Warn("skipping entry", zap.String("path", p), zap.Error(err))
			report.Failures = append(report.Failures, err)
			continue
		}
		if t.inStore(p) {
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			err = fimerrors.FileSystem(p, err)
			t.Logger.Warn("skipping entry", zap.String("path", p), zap.Error(err))
			report.Failures = append(report.Failures, err)
			continue
		}

		status, err := t.Classify(p, info)
		if err != nil {
			t.Logger.Warn("skipping entry", zap.String("path", p), zap.Error(err))
			report.Failures = append(report.Failures, err)
			continue
		}

		switch status {
		case shared.Modified:
			report.Modified = append(report.Modified, p)
		case shared.Untracked:
			report.Untracked = append(report.Untracked, p)
		default:
			report.Unchanged++
		}
	}

	sort.Strings(report.Modified)
	sort.Strings(report.Untracked)

	t.Logger.Info("status finished",
		zap.String("path", absPath),
		zap.Int("modified", len(report.Modified)),
		zap.Int("untracked", len(report.Untracked)),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("failures", len(report.Failures)))

	return report, nil
}

// Classify compares the live state of absPath (described by info) with its
// record:
//
//   - no record: Untracked (a corrupt record counts as no record)
//   - size differs: Modified, without hashing
//   - size and mtime equal: Unchanged, without hashing
//   - otherwise the content digest decides
//
// A file rewritten in place with the same size and the same (or backdated)
// mtime is reported Unchanged.
func (t *Tracker) Classify(absPath string, info fs.FileInfo) (shared.Status, error) {
	rec, err := t.Manifest.Read(absPath)
	if err != nil {
		switch {
		case manifest.IsAbsent(err):
			return shared.Untracked, nil
		case errors.Is(err, manifest.ErrCorruptRecord):
			t.Logger.Warn("treating corrupt record as untracked",
				zap.String("path", absPath),
				zap.Error(err))
			return shared.Untracked, nil
		default:
			return shared.Unchanged, fmt.Errorf("reading record for %s: %w", absPath, err)
		}
	}

	if rec.Size != info.Size() {
		return shared.Modified, nil
	}
	if rec.ModTime == info.ModTime().Unix() {
		return shared.Unchanged, nil
	}

	sum, err := digest.File(absPath)
	if err != nil {
		return shared.Unchanged, fimerrors.FileSystem(absPath, err)
	}
	if sum != rec.Digest {
		return shared.Modified, nil
	}
	return shared.Unchanged, nil
}
