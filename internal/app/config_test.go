package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/vendora/vendora/internal/testing/guard"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-session-secret")
	t.Setenv("CSRF_SECRET", "test-csrf-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 15*time.Second, cfg.AppReadTimeout)
	require.Equal(t, 5*time.Minute, cfg.DirectoryCacheTTL)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	require.True(t, (&Config{AppEnv: "production"}).IsProduction())
	require.False(t, (&Config{AppEnv: "staging"}).IsProduction())
	require.False(t, (*Config)(nil).IsProduction())
}

func TestInTestMode(t *testing.T) {
	t.Setenv("VENDORA_TEST_MODE", "1")
	RefreshTestMode()
	require.True(t, InTestMode())

	t.Setenv("VENDORA_TEST_MODE", "")
	RefreshTestMode()
	require.False(t, InTestMode())
}
