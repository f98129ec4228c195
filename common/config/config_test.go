package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("pdfpress")
	require.NoError(t, err)

	assert.Equal(t, "pdfpress", cfg.Service.Name)
	assert.Equal(t, 5000, cfg.Service.Port)
	assert.Equal(t, "/tmp/uploads", cfg.Storage.UploadDir)
	assert.Equal(t, "/tmp/compressed", cfg.Storage.CompressedDir)
	assert.Equal(t, int64(50<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, time.Hour, cfg.Storage.RetentionTTL)
	assert.Equal(t, time.Hour, cfg.Storage.SweepInterval)
	assert.Equal(t, "gs", cfg.Tool.Binary)
	assert.Equal(t, 120*time.Second, cfg.Tool.Timeout)
	assert.Equal(t, 85, cfg.Convert.JPEGQuality)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("GS_TIMEOUT", "30s")
	t.Setenv("RETENTION_TTL", "10m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("pdfpress")
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Service.Port)
	assert.Equal(t, int64(1048576), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, 30*time.Second, cfg.Tool.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Storage.RetentionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Service.CORSOrigins)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("pdfpress")
		require.NoError(t, err)
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.Service.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("same scratch dirs", func(t *testing.T) {
		cfg := base()
		cfg.Storage.CompressedDir = cfg.Storage.UploadDir
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive upload limit", func(t *testing.T) {
		cfg := base()
		cfg.Storage.MaxUploadBytes = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad jpeg quality", func(t *testing.T) {
		cfg := base()
		cfg.Convert.JPEGQuality = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestRedisAddr(t *testing.T) {
	cfg, err := Load("pdfpress")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}
