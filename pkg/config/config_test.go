package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "5.131", cfg.VK.APIVersion)
	assert.Equal(t, "https://api.vk.com/method", cfg.VK.BaseURL)
	assert.Equal(t, 3, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "cache", cfg.Output.CacheDirectory)
	assert.Equal(t, "err.log", cfg.Output.ErrorLog)
	assert.False(t, cfg.Download.Wikis)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VKARCHIVE_ACCESS_TOKEN", "env-token")
	t.Setenv("VKARCHIVE_AUDIO_TOKEN", "env-audio")
	t.Setenv("VKARCHIVE_REQUESTS_PER_SECOND", "2")
	t.Setenv("VKARCHIVE_CACHE_DIR", "/tmp/vk-cache")
	t.Setenv("VKARCHIVE_DOWNLOAD_WIKIS", "TRUE")
	t.Setenv("VKARCHIVE_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-token", cfg.VK.AccessToken)
	assert.Equal(t, "env-audio", cfg.VK.AudioToken)
	assert.Equal(t, 2, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "/tmp/vk-cache", cfg.Output.CacheDirectory)
	assert.True(t, cfg.Download.Wikis)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("VKARCHIVE_REQUESTS_PER_SECOND", "fast")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero rate limit", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, true},
		{"rate limit above API cap", func(c *Config) { c.RateLimit.RequestsPerSecond = 50 }, true},
		{"unknown strategy", func(c *Config) { c.RateLimit.Strategy = "leaky" }, true},
		{"empty cache directory", func(c *Config) { c.Output.CacheDirectory = "" }, true},
		{"error log is a directory", func(c *Config) { c.Output.ErrorLog = "logs" + string(os.PathSeparator) }, true},
		{"bad base url", func(c *Config) { c.VK.BaseURL = "not a url" }, true},
		{"zero download timeout", func(c *Config) { c.Download.Timeout = 0 }, true},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.Equal(t, tt.wantError, err != nil, "Validate() = %v", err)
		})
	}
}

func TestRequireTokenAndArchiveToken(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.RequireToken())

	cfg.VK.AccessToken = "main"
	assert.NoError(t, cfg.RequireToken())
	assert.Equal(t, "main", cfg.ArchiveToken())

	cfg.VK.AudioToken = "audio"
	assert.Equal(t, "audio", cfg.ArchiveToken())
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"access-token": "flag-token",
		"cache-dir":    "/flag/cache",
		"rate-limit":   1,
		"wikis":        true,
		"skip-videos":  true,
		"log-level":    "error",
	})

	assert.Equal(t, "flag-token", cfg.VK.AccessToken)
	assert.Equal(t, "/flag/cache", cfg.Output.CacheDirectory)
	assert.Equal(t, 1, cfg.RateLimit.RequestsPerSecond)
	assert.True(t, cfg.Download.Wikis)
	assert.True(t, cfg.Download.SkipVideos)
	assert.False(t, cfg.Download.SkipPhotos)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.VK.AccessToken = "saved-token"
	cfg.Download.Timeout = 90 * time.Second
	cfg.Download.SkipAudios = true
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))

	assert.Equal(t, "saved-token", loaded.VK.AccessToken)
	assert.Equal(t, 90*time.Second, loaded.Download.Timeout)
	assert.True(t, loaded.Download.SkipAudios)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vk:\n  access_token: file-token\noutput:\n  cache_directory: file-cache\n"), 0600))

	t.Setenv("VKARCHIVE_CACHE_DIR", "env-cache")

	cfg, err := Load(path, map[string]interface{}{"log-level": "warn"})
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.VK.AccessToken)
	assert.Equal(t, "env-cache", cfg.Output.CacheDirectory)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "5.131", cfg.VK.APIVersion)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limit: [broken"), 0600))

	_, err := Load(path, nil)
	assert.Error(t, err)
}
