// Package config holds the tool configuration, loaded from an optional
// JSON file over built-in defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the root configuration structure.
type Config struct {
	Cache CacheConfig `json:"cache"`
	Git   GitConfig   `json:"git"`
}

// CacheConfig controls where per-repository history caches live.
type CacheConfig struct {
	Dir string `json:"dir"` // Default: ~/.cache/histscan
}

// GitConfig controls the git subsystem.
type GitConfig struct {
	Enabled     bool   `json:"enabled"`     // Default: true
	Reference   string `json:"reference"`   // Default: "origin/HEAD"
	LocalBranch string `json:"localBranch"` // Default: "master"
	StashLabel  string `json:"stashLabel"`  // Default: "histscan scan --commits"
}

// Default returns the built-in configuration.
func Default() Config {
	cacheDir := ".histscan-cache"
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "histscan")
	}
	return Config{
		Cache: CacheConfig{Dir: cacheDir},
		Git: GitConfig{
			Enabled:     true,
			Reference:   "origin/HEAD",
			LocalBranch: "master",
			StashLabel:  "histscan scan --commits",
		},
	}
}

// Load reads a configuration file, overlaying it on the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
