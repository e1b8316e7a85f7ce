package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stride")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, 200, cfg.S3.ListingCap)
	assert.False(t, cfg.S3.Configured())

	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
data_dir: /srv/stride
language: fr
s3:
  endpoint: https://minio.local:9000
  bucket: photos
  access_key: ak
  secret_key: sk
  path_style: true
  listing_cap: 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/stride", cfg.DataDir)
	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, "https://minio.local:9000", cfg.S3.Endpoint)
	assert.Equal(t, "photos", cfg.S3.Bucket)
	assert.True(t, cfg.S3.PathStyle)
	assert.Equal(t, 50, cfg.S3.ListingCap)
	assert.True(t, cfg.S3.Configured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STRIDE_S3_BUCKET", "from-env")
	t.Setenv("STRIDE_LANGUAGE", "de")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.S3.Bucket)
	assert.Equal(t, "de", cfg.Language)
}
