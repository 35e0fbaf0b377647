package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".codegraph.yaml")
	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".codegraph.yaml")

	cfg := Default()
	cfg.HashAlgorithm = "sha256"
	cfg.FullRefreshFileThreshold = 123
	cfg.Aliases = map[string]string{"@app": "src/main/java/com/example"}

	assert.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileFillsRemainingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".codegraph.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("hashAlgorithm: sha256\n"), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "sha256", cfg.HashAlgorithm)
	assert.Equal(t, DefaultExcludeGlobs(), cfg.ExcludeGlobs)
	assert.Equal(t, 2000, cfg.MinAnalysisIntervalMS)
}
