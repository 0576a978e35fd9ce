// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	BackendFile   = "file"
	BackendBadger = "badger"

	// FileName is looked up in the invocation directory when no explicit
	// config file is given.
	FileName = ".fimrc"
)

type Config struct {
	StoreDir       string `mapstructure:"store_dir"`        // store directory name, relative to the working tree
	Backend        string `mapstructure:"backend"`          // file, badger
	LogLevel       string `mapstructure:"log_level"`        // debug, info, warn, error
	WatchCacheSize int    `mapstructure:"watch_cache_size"` // paths remembered by watch
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store_dir", ".fim")
	v.SetDefault("backend", BackendFile)
	v.SetDefault("log_level", "warn")
	v.SetDefault("watch_cache_size", 1024)
}

// Load reads configuration from path, or from FileName in dir when path is
// empty. A missing implicit config file is not an error.
func Load(v *viper.Viper, dir, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.StoreDir == "" || c.StoreDir == "." || c.StoreDir == ".." ||
		strings.ContainsRune(c.StoreDir, filepath.Separator) || strings.ContainsRune(c.StoreDir, '/') {
		return fmt.Errorf("store_dir must be a single directory name, got %q", c.StoreDir)
	}

	switch c.Backend {
	case BackendFile, BackendBadger:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendFile, BackendBadger)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	if c.WatchCacheSize <= 0 {
		return fmt.Errorf("watch_cache_size must be positive, got %d", c.WatchCacheSize)
	}

	return nil
}

// StorePath returns the absolute store directory for the working tree root.
func (c *Config) StorePath(root string) string {
	return filepath.Join(root, c.StoreDir)
}
