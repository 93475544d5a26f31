package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("SEED_ROOMS", "")

	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "development", cfg.Env)
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, []string{"general"}, cfg.SeedRooms)
	require.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadSeedRooms(t *testing.T) {
	t.Setenv("SEED_ROOMS", "general, random,  dev ,")

	cfg := Load()

	require.Equal(t, []string{"general", "random", "dev"}, cfg.SeedRooms)
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	require.Panics(t, func() { Load() })
}

func TestLoadProductionWithSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "a-real-secret")

	cfg := Load()

	require.False(t, cfg.IsDevelopment())
	require.Equal(t, "a-real-secret", cfg.JWTSecret)
}
