package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SERVER_MODE", "DATABASE_DRIVER", "JWT_EXPIRE_HOURS"} {
		t.Setenv(key, "")
	}
	uploads := filepath.Join(t.TempDir(), "uploads")
	dir := writeConfig(t, `
jwt:
  secret: "file-secret"
storage:
  type: local
  local_path: "`+filepath.ToSlash(uploads)+`"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 10, cfg.Upload.MaxAssignmentMB)
	assert.Equal(t, 2, cfg.Upload.MaxAvatarMB)
	assert.Equal(t, "00:05", cfg.Scheduler.StreakResetAt)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.FilePath)
	assert.DirExists(t, uploads)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
jwt:
  secret: "file-secret"
  expire_hours: 2
storage:
  type: minio
`)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	dir := writeConfig(t, "storage:\n  type: minio\n")
	_, err := LoadConfig(dir)
	assert.Error(t, err)

	dir = writeConfig(t, "server:\n  mode: release\njwt:\n  secret: short\nstorage:\n  type: minio\n")
	_, err = LoadConfig(dir)
	assert.ErrorContains(t, err, "too short")
}
