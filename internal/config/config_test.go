package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 4000
mongo:
  database: test_gateway
database:
  driver: postgres
  dbname: profiles
cache:
  ttl: 45s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "default applied")
	assert.Equal(t, "test_gateway", cfg.Mongo.Database)
	assert.Equal(t, "messages", cfg.Mongo.MessagesCollection, "default applied")
	assert.Equal(t, 45*time.Second, cfg.Cache.TTL)
	assert.True(t, cfg.FallbackConfigured())
}

func TestFallbackNotConfigured(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.FallbackConfigured())
}
