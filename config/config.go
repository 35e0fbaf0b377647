// Package config holds the injected configuration shared by the assembler,
// hash cache, incremental updater and branch manager. There is no
// process-wide singleton: the host constructs one Config per workspace and
// passes it to each collaborator explicitly (see DESIGN NOTES, "Singletons
// for the hash store, updater, branch manager, MCP settings").
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full set of options recognized by the indexing core.
type Config struct {
	IncludeExtensions    []string          `json:"includeExtensions,omitempty" yaml:"includeExtensions,omitempty"`
	ExcludeGlobs         []string          `json:"excludeGlobs,omitempty" yaml:"excludeGlobs,omitempty"`
	Aliases              map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	FrameworkSourceRoots []string          `json:"frameworkSourceRoots,omitempty" yaml:"frameworkSourceRoots,omitempty"`

	MinAnalysisIntervalMS    int    `json:"minAnalysisIntervalMs" yaml:"minAnalysisIntervalMs"`
	FileWatchDebounceMS      int    `json:"fileWatchDebounceMs" yaml:"fileWatchDebounceMs"`
	SCMDebounceMS            int    `json:"scmDebounceMs" yaml:"scmDebounceMs"`
	FullRefreshFileThreshold int    `json:"fullRefreshFileThreshold" yaml:"fullRefreshFileThreshold"`
	StashRefreshThreshold    int    `json:"stashRefreshThreshold" yaml:"stashRefreshThreshold"`
	HashAlgorithm            string `json:"hashAlgorithm" yaml:"hashAlgorithm"`

	// CacheDirName is the directory name created under the workspace root to
	// hold persisted artifacts, e.g. ".codegraph".
	CacheDirName string `json:"cacheDirName" yaml:"cacheDirName"`
}

// Default returns a Config populated with the documented defaults from
// spec §6.
func Default() *Config {
	return &Config{
		IncludeExtensions:        []string{".java", ".jsx", ".tsx", ".js", ".ts", ".py"},
		ExcludeGlobs:             DefaultExcludeGlobs(),
		Aliases:                  map[string]string{},
		FrameworkSourceRoots:     []string{"src/main/java", "src/main/kotlin", "src"},
		MinAnalysisIntervalMS:    2000,
		FileWatchDebounceMS:      1000,
		SCMDebounceMS:            500,
		FullRefreshFileThreshold: 50,
		StashRefreshThreshold:    20,
		HashAlgorithm:            "highwayhash-64",
		CacheDirName:             ".codegraph",
	}
}

// DefaultExcludeGlobs is the well-known vendored/build/cache directory list
// excluded from file enumeration (spec §4.4 step 2).
func DefaultExcludeGlobs() []string {
	return []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/vendor/**",
		"**/dist/**",
		"**/build/**",
		"**/target/**",
		"**/.codegraph/**",
		"**/__pycache__/**",
		"**/.venv/**",
		"**/venv/**",
	}
}

// Load reads a YAML config file at path into a copy of Default, so an
// absent option falls back to its documented default rather than the zero
// value. A missing file is not an error: it returns Default() unchanged,
// the same "absence degrades gracefully" posture the rest of the core
// takes toward missing cache files.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MinAnalysisInterval returns MinAnalysisIntervalMS as a time.Duration.
func (c *Config) MinAnalysisInterval() time.Duration {
	return time.Duration(c.MinAnalysisIntervalMS) * time.Millisecond
}

// FileWatchDebounce returns FileWatchDebounceMS as a time.Duration.
func (c *Config) FileWatchDebounce() time.Duration {
	return time.Duration(c.FileWatchDebounceMS) * time.Millisecond
}

// SCMDebounce returns SCMDebounceMS as a time.Duration.
func (c *Config) SCMDebounce() time.Duration {
	return time.Duration(c.SCMDebounceMS) * time.Millisecond
}
