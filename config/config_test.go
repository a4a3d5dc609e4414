package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:31100", cfg.BaseURL)
	assert.Empty(t, cfg.S3AccessKey)
	assert.Empty(t, cfg.S3SecretKey)
	assert.Empty(t, cfg.S3Endpoint)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, time.Hour, cfg.PollTimeout)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SCALEODM_BASE_URL", "http://odm.example.com:31100")
	t.Setenv("SCALEODM_S3_ACCESS_KEY", "AKIA123")
	t.Setenv("SCALEODM_S3_SECRET_KEY", "shhh")
	t.Setenv("SCALEODM_S3_ENDPOINT", "https://minio.local:9000")
	t.Setenv("SCALEODM_POLL_INTERVAL", "5s")
	t.Setenv("SCALEODM_POLL_TIMEOUT", "2h30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://odm.example.com:31100", cfg.BaseURL)
	assert.Equal(t, "AKIA123", cfg.S3AccessKey)
	assert.Equal(t, "shhh", cfg.S3SecretKey)
	assert.Equal(t, "https://minio.local:9000", cfg.S3Endpoint)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 2*time.Hour+30*time.Minute, cfg.PollTimeout)
}
