package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/pokeflow/internal/domain"
)

// PokemonRepo — репозиторий таблицы pokemons.
type PokemonRepo struct {
	pool *pgxpool.Pool
}

// NewPokemonRepo создаёт новый PokemonRepo.
func NewPokemonRepo(pool *pgxpool.Pool) *PokemonRepo {
	return &PokemonRepo{pool: pool}
}

// InsertPokemon вставляет покемонов в одной транзакции.
// Существующие по имени строки обновляются.
func (r *PokemonRepo) InsertPokemon(ctx context.Context, rows []domain.PokemonRow) (int64, error) {
	query := `
		INSERT INTO pokemons (name, height, base_experience, is_default,
		                      hp, attack, defense, special_attack, special_defense, speed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (name) DO UPDATE
		SET height = EXCLUDED.height, base_experience = EXCLUDED.base_experience,
		    is_default = EXCLUDED.is_default, hp = EXCLUDED.hp, attack = EXCLUDED.attack,
		    defense = EXCLUDED.defense, special_attack = EXCLUDED.special_attack,
		    special_defense = EXCLUDED.special_defense, speed = EXCLUDED.speed
	`

	var affected int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range rows {
			batch.Queue(query,
				p.Name,
				p.Height,
				p.BaseExperience,
				p.IsDefault,
				p.HP,
				p.Attack,
				p.Defense,
				p.SpecialAttack,
				p.SpecialDefense,
				p.Speed,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for _, p := range rows {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("insert pokemon %s: %w", p.Name, err)
			}
			affected += tag.RowsAffected()
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// NameIDs возвращает отображение имя → pokemon_id.
func (r *PokemonRepo) NameIDs(ctx context.Context) (map[string]int64, error) {
	return queryNameIDs(ctx, r.pool, `SELECT name, pokemon_id FROM pokemons`)
}

// queryNameIDs выполняет запрос из двух колонок (name, id).
func queryNameIDs(ctx context.Context, pool *pgxpool.Pool, query string) (map[string]int64, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query name ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("scan name id: %w", err)
		}
		ids[name] = id
	}
	return ids, rows.Err()
}
