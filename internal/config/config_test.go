package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "en", cfg.DefaultLanguage)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_secret: from-file\nport: \"7000\"\ndefault_language: sr\n"), 0o600))

	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("PORT", "7001")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "7001", cfg.Port)
	assert.Equal(t, "sr", cfg.DefaultLanguage)
	assert.Equal(t, 4380*time.Hour, cfg.JWTTTL)
}

func TestLoad_DatabaseDefaultsToMemory(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)

	t.Setenv("DATABASE_URL", "postgres://app@db:5432/atrijum")
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@db:5432/atrijum", cfg.DatabaseURL)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := config.Default()
	cfg.CORSOrigins = "https://atrijum.rs, https://admin.atrijum.rs,,"

	assert.Equal(t, []string{"https://atrijum.rs", "https://admin.atrijum.rs"}, cfg.AllowedOrigins())
}
