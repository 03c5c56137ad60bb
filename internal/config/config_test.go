package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
app:
  env: development
  port: 8080
static:
  folder: /var/rando/static
mongodb:
  uri: mongodb://localhost:27017
  database: rando
detected_tags:
  animal:
    - dog
    - cat
`

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 16, cfg.Static.IDByteLength)
	assert.Equal(t, 2, cfg.Static.PrefixLength)
	assert.Equal(t, "jpg", cfg.Static.FileExt)
	assert.Equal(t, 85, cfg.Image.Quality)
	assert.Equal(t, 10, cfg.Image.MaxUploadMB)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 60*time.Second, cfg.RunTimeout)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 30*time.Second, cfg.BreakerCooldown)
	assert.Equal(t, []string{"dog", "cat"}, cfg.DetectedTag["animal"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
