// internal/repo/repo.go
package repo

import (
	"fmt"
	"path/filepath"

	"fim/internal/config"
	"fim/internal/manifest"
	"fim/internal/tracker"

	"go.uber.org/zap"
)

// Repo ties a working tree to its manifest store.
type Repo struct {
	Root     string
	Config   *config.Config
	Manifest *manifest.Manifest
	Tracker  *tracker.Tracker
	Logger   *zap.Logger
}

// Initialize creates the store for the working tree at root and returns its
// absolute path. It fails if the store already exists.
func Initialize(root string, cfg *config.Config) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}

	storeDir := cfg.StorePath(absRoot)
	if err := manifest.Initialize(storeDir); err != nil {
		return "", err
	}
	return storeDir, nil
}

// Open opens an initialized repository. Nothing is written when the store
// is missing.
func Open(root string, cfg *config.Config, logger *zap.Logger) (*Repo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m, err := manifest.Open(cfg.StorePath(absRoot), cfg.Backend)
	if err != nil {
		return nil, err
	}

	t, err := tracker.New(m, logger)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("creating tracker: %w", err)
	}

	logger.Debug("opened repository",
		zap.String("root", absRoot),
		zap.String("store", m.Dir()),
		zap.String("backend", cfg.Backend))

	return &Repo{
		Root:     absRoot,
		Config:   cfg,
		Manifest: m,
		Tracker:  t,
		Logger:   logger,
	}, nil
}

// Close releases the manifest backend.
func (r *Repo) Close() error {
	if r == nil || r.Manifest == nil {
		return nil
	}
	if err := r.Manifest.Close(); err != nil {
		return fmt.Errorf("closing manifest: %w", err)
	}
	return nil
}
