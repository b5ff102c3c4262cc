package repo

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/pokeflow/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestInsertEvolutions_RejectsGapBeforeQuery(t *testing.T) {
	// Пул не нужен: запись отклоняется до обращения к БД.
	r := NewEvolutionRepo(nil)

	_, err := r.InsertEvolutions(context.Background(), []domain.EvolutionRecord{
		{FirstForm: "A", SecondForm: nil, ThirdForm: strPtr("C")},
	})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

// testPool подключается к БД из POKEFLOW_TEST_DB_URL или пропускает тест.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("POKEFLOW_TEST_DB_URL")
	if dsn == "" {
		t.Skip("POKEFLOW_TEST_DB_URL not set")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE evolutions, pokemon_types, types, pokemons RESTART IDENTITY`)
	require.NoError(t, err)

	return pool
}

func TestEvolutionRepo_Idempotent(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	r := NewEvolutionRepo(pool)

	records := []domain.EvolutionRecord{
		{FirstForm: "eevee", SecondForm: strPtr("vaporeon")},
		{FirstForm: "bulbasaur", SecondForm: strPtr("ivysaur"), ThirdForm: strPtr("venusaur")},
	}

	n, err := r.InsertEvolutions(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.InsertEvolutions(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "redelivered batch adds nothing")

	stored, err := r.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.True(t, records[0].Equal(stored[0]))

	byForm, err := r.ListByForm(ctx, "ivysaur")
	require.NoError(t, err)
	require.Len(t, byForm, 1)
	assert.Equal(t, "bulbasaur", byForm[0].FirstForm)
}

func TestTypeRepo_Links(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	pokemon := NewPokemonRepo(pool)
	types := NewTypeRepo(pool)

	_, err := pokemon.InsertPokemon(ctx, []domain.PokemonRow{{Name: "bulbasaur", Height: 7}})
	require.NoError(t, err)

	n, err := types.InsertTypes(ctx, []string{"grass", "poison", "grass"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	pokemonIDs, err := pokemon.NameIDs(ctx)
	require.NoError(t, err)
	typeIDs, err := types.NameIDs(ctx)
	require.NoError(t, err)

	links := []domain.TypeLink{
		{PokemonID: pokemonIDs["bulbasaur"], TypeID: typeIDs["grass"]},
		{PokemonID: pokemonIDs["bulbasaur"], TypeID: typeIDs["poison"]},
		{PokemonID: pokemonIDs["bulbasaur"], TypeID: typeIDs["grass"]},
	}
	n, err = types.InsertLinks(ctx, links)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
