package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:54321", c.SupabaseURL)
	assert.Empty(t, c.NexusAPIURL)
	assert.Equal(t, ".inclick", c.DataDir)
	assert.Equal(t, "inclick-media", c.S3Bucket)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 30*time.Second, c.SessionRefreshInterval)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:54321", cfg.SupabaseURL)
	assert.Equal(t, 30*time.Second, cfg.SessionRefreshInterval)
}

func Test_parseEnv_Overlay(t *testing.T) {
	t.Setenv("INCLICK_SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("INCLICK_NEXUS_API_URL", "https://nexus.inclick.mx")
	t.Setenv("INCLICK_SESSION_REFRESH_INTERVAL", "1m")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "https://project.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "https://nexus.inclick.mx", cfg.NexusAPIURL)
	assert.Equal(t, time.Minute, cfg.SessionRefreshInterval)
	// Untouched by env.
	assert.Equal(t, ".inclick", cfg.DataDir)
}

func Test_parseEnv_InvalidDurationIgnored(t *testing.T) {
	t.Setenv("INCLICK_SESSION_REFRESH_INTERVAL", "soon")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, 30*time.Second, cfg.SessionRefreshInterval)
}
