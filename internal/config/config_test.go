package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.FeedbackAPI.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.FeedbackAPI.Timeout)
	assert.Equal(t, 5, cfg.RateLimit.PerMinute)
	assert.Equal(t, "en", cfg.I18n.Language)
	assert.Equal(t, "session", cfg.Session.Prefix)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "./migrations", cfg.Migrations.Dir)
	assert.NoError(t, cfg.ValidateFeedbackAPI())
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("feedbackapi:\n  base_url: https://feedback.example.org/\n  timeout: 3s\ni18n:\n  language: hi\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	t.Setenv("RATELIMIT_PER_MINUTE", "12")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://feedback.example.org", cfg.FeedbackAPI.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.FeedbackAPI.Timeout)
	assert.Equal(t, "hi", cfg.I18n.Language)
	assert.Equal(t, 12, cfg.RateLimit.PerMinute)
}

func TestValidateFeedbackAPI(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateFeedbackAPI())

	cfg.FeedbackAPI.BaseURL = "ftp://nope"
	cfg.FeedbackAPI.Timeout = time.Second
	assert.Error(t, cfg.ValidateFeedbackAPI())

	cfg.FeedbackAPI.BaseURL = "http://localhost:8080"
	assert.NoError(t, cfg.ValidateFeedbackAPI())
}
