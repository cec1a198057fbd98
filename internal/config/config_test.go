package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("CODEQUEST_DATABASE_URL", "postgres://localhost/codequest")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8000", cfg.HTTPAddress())
	require.Equal(t, "https://emkc.org/api/v2/piston/execute", cfg.PistonURL)
	require.Equal(t, 10*time.Second, cfg.CompileTimeout)
	require.Equal(t, 3*time.Second, cfg.RunTimeout)
	require.Equal(t, int64(-1), cfg.RunMemoryLimit)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.Equal(t, "python", cfg.DefaultLanguage)
	require.Equal(t, "3.10.0", cfg.DefaultVersion)
	require.Equal(t, 30, cfg.SubmitRateLimit)
	require.Zero(t, cfg.PistonRetries)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("CODEQUEST_DATABASE_URL", "postgres://localhost/codequest")
	t.Setenv("CODEQUEST_APP_PORT", ":9090")
	t.Setenv("CODEQUEST_PISTON_URL", "http://piston:2000/api/v2/execute")
	t.Setenv("CODEQUEST_PISTON_RUN_TIMEOUT_MS", "1500")
	t.Setenv("CODEQUEST_PISTON_RETRIES", "-3")
	t.Setenv("CODEQUEST_CATALOG_CACHE_TTL", "30s")
	t.Setenv("CODEQUEST_DEFAULT_LANGUAGE", "JavaScript")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "http://piston:2000/api/v2/execute", cfg.PistonURL)
	require.Equal(t, 1500*time.Millisecond, cfg.RunTimeout)
	require.Zero(t, cfg.PistonRetries)
	require.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	require.Equal(t, "javascript", cfg.DefaultLanguage)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("CODEQUEST_DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDurations(t *testing.T) {
	t.Setenv("CODEQUEST_DATABASE_URL", "postgres://localhost/codequest")
	t.Setenv("CODEQUEST_CATALOG_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}
