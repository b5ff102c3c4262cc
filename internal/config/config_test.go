package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/pokeflow/internal/evolution"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DB_URL", "RABBITMQ_URL", "REDIS_URL", "POKEAPI_URL", "POKEAPI_CONCURRENCY",
		"POKEAPI_RPS", "POKEMON_LIMIT", "EVOLUTION_LIMIT", "EXTRACT_CRON", "EXTRACT_TZ", "EVOLUTION_OVERFLOW",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultDBURL, cfg.DBURL)
	assert.Equal(t, DefaultRabbitMQURL, cfg.RabbitMQURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, float64(DefaultRPS), cfg.RPS)
	assert.Equal(t, DefaultPokemonLimit, cfg.PokemonLimit)
	assert.Equal(t, evolution.OverflowReject, cfg.Overflow)
	assert.Equal(t, "UTC", cfg.ExtractTimezone)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("POKEMON_LIMIT", "151")
	t.Setenv("EVOLUTION_OVERFLOW", "truncate")
	t.Setenv("EXTRACT_CRON", "0 3 * * *")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 151, cfg.PokemonLimit)
	assert.Equal(t, evolution.OverflowTruncate, cfg.Overflow)
	assert.Equal(t, "0 3 * * *", cfg.ExtractCron)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("POKEAPI_CONCURRENCY", "many")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("POKEAPI_CONCURRENCY", "")
	t.Setenv("EVOLUTION_OVERFLOW", "explode")
	_, err = Load()
	assert.Error(t, err)
}
