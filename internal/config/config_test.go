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
	t.Setenv("ENV", "UNITDEFAULTS")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 150.0, cfg.ExportDPI)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoadDotEnvAndOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", ".env.unitdotenv"),
		[]byte("GR_UNIT_MARKER=1\nREDIS_URL=redis://localhost:6379/0\n"), 0o644))
	t.Setenv("ENV", "UNITDOTENV")
	t.Setenv("MODE", "ONLINE")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SNAPSHOT_TTL", "30s")
	t.Setenv("EXPORT_DPI", "200")
	t.Cleanup(func() {
		os.Unsetenv("GR_UNIT_MARKER")
		os.Unsetenv("REDIS_URL")
	})

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.SnapshotTTL)
	assert.Equal(t, 200.0, cfg.ExportDPI)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("ENV", "UNITBADDRIVER")
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
