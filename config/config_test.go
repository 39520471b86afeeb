package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, filepath.Join("/var/yammi", "data", "cache.db"), cfg.CachePath())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yammi.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
system:
  workdir: /tmp/yammi
web:
  port: 9000
store:
  backend: database
  poll_interval: 45s
  cache_file: /srv/cache.db
database:
  type: sqlite
  name: shop.db
`), 0o600))

	t.Setenv("YAMMI_WEB_PORT", "9090")
	t.Setenv("YAMMI_MAIL_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/yammi", cfg.System.Workdir)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "database", cfg.Store.Backend)
	assert.Equal(t, 45*time.Second, cfg.Store.PollInterval)
	assert.Equal(t, "/srv/cache.db", cfg.CachePath())
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.True(t, cfg.Mail.Enabled)
	// untouched keys keep defaults
	assert.Equal(t, "Africa/Dar_es_Salaam", cfg.System.Location)
	assert.Equal(t, 10*time.Second, cfg.Store.RemoteTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
