package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbmap/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dbmap.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 4*time.Hour, cfg.Mapping.MetadataTTL)
	assert.Equal(t, 1024, cfg.Mapping.MetadataMaxSize)
	assert.False(t, cfg.Mapping.ValidateParameters)
	assert.Equal(t, "embed", cfg.Resources.Source)
	assert.Equal(t, 10*time.Minute, cfg.Resources.CacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "std", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "dbmap", cfg.Metrics.Namespace)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromFile(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://chinook@localhost/chinook
mapping:
  metadata_ttl: 30m
  metadata_max_size: 64
  validate_parameters: true
resources:
  source: redis
  cache_ttl: 1m
  redis:
    address: redis.internal:6379
    db: 2
    prefix: "chinook:"
log:
  level: debug
  format: zap
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://chinook@localhost/chinook", cfg.Database.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Mapping.MetadataTTL)
	assert.Equal(t, 64, cfg.Mapping.MetadataMaxSize)
	assert.True(t, cfg.Mapping.ValidateParameters)
	assert.Equal(t, "redis", cfg.Resources.Source)
	assert.Equal(t, time.Minute, cfg.Resources.CacheTTL)
	assert.Equal(t, "redis.internal:6379", cfg.Resources.Redis.Address)
	assert.Equal(t, 2, cfg.Resources.Redis.DB)
	assert.Equal(t, "chinook:", cfg.Resources.Redis.Prefix)
	assert.Equal(t, "zap", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, "database:\n  dsn: file:from-file.db\n")
	t.Setenv("DBMAP_DATABASE_DSN", "file:from-env.db")
	t.Setenv("DBMAP_MAPPING_VALIDATE_PARAMETERS", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "file:from-env.db", cfg.Database.DSN)
	assert.True(t, cfg.Mapping.ValidateParameters)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := writeConfig(t, "database: [unterminated")

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeConfiguration))
}

func TestValidate_Failures(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Log.Format = "xml"
	cfg.Resources.Source = "nats"
	cfg.Resources.NATS.Bucket = ""

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeConfiguration))

	failed, ok := errors.DetailOf(err, errors.DetailField)
	require.True(t, ok)
	joined := strings.Join(failed.([]string), " ")
	assert.Contains(t, joined, "Format(oneof)")
	assert.Contains(t, joined, "Bucket(required_for_source)")
}

func TestValidate_MetricsNamespace(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Metrics.Namespace = ""
	assert.NoError(t, cfg.Validate())

	cfg.Metrics.Enabled = true
	err = cfg.Validate()
	require.Error(t, err)
	failed, _ := errors.DetailOf(err, errors.DetailField)
	assert.Contains(t, strings.Join(failed.([]string), " "), "Namespace(required_if)")
}
