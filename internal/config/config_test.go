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
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(true)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "memory://", cfg.CacheURL)
	assert.Equal(t, "json", cfg.CacheCodec)
	assert.Equal(t, "https://api.jikan.moe/v4", cfg.Jikan.BaseURL)
	assert.Equal(t, 3, cfg.Jikan.MaxConcurrent)
	assert.Equal(t, 400*time.Millisecond, cfg.Jikan.Spacing)
	assert.Equal(t, 20*time.Second, cfg.Jikan.Timeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JIKAN_BASE_URL", "http://localhost:9000/v4/")
	t.Setenv("JIKAN_SPACING", "10ms")
	t.Setenv("JIKAN_MAX_CONCURRENT", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(true)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "http://localhost:9000/v4", cfg.Jikan.BaseURL)
	assert.Equal(t, 10*time.Millisecond, cfg.Jikan.Spacing)
	assert.Equal(t, 5, cfg.Jikan.MaxConcurrent)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load(true)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = Load(false)
	assert.NoError(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("JIKAN_TIMEOUT", "soon")
		_, err := Load(false)
		assert.Error(t, err)
	})

	t.Run("zero concurrency", func(t *testing.T) {
		t.Setenv("JIKAN_MAX_CONCURRENT", "0")
		_, err := Load(false)
		assert.Error(t, err)
	})
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, ".env")

	require.NoError(t, os.WriteFile(p, []byte("DB_DSN=from_file\n"), 0644))

	t.Setenv("DB_DSN", "from_env")

	cwd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DB_DSN"))
}
