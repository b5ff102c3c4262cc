package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/pokeflow/internal/domain"
)

// TypeRepo — репозиторий таблиц types и pokemon_types.
type TypeRepo struct {
	pool *pgxpool.Pool
}

// NewTypeRepo создаёт новый TypeRepo.
func NewTypeRepo(pool *pgxpool.Pool) *TypeRepo {
	return &TypeRepo{pool: pool}
}

// InsertTypes вставляет имена типов. Существующие пропускаются.
func (r *TypeRepo) InsertTypes(ctx context.Context, names []string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO types (name)
		SELECT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING
	`, names)
	if err != nil {
		return 0, fmt.Errorf("insert types: %w", err)
	}
	return tag.RowsAffected(), nil
}

// NameIDs возвращает отображение имя типа → type_id.
func (r *TypeRepo) NameIDs(ctx context.Context) (map[string]int64, error) {
	return queryNameIDs(ctx, r.pool, `SELECT name, type_id FROM types`)
}

// InsertLinks вставляет связи покемон-тип через COPY во временную таблицу.
func (r *TypeRepo) InsertLinks(ctx context.Context, links []domain.TypeLink) (int64, error) {
	var inserted int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			CREATE TEMP TABLE pokemon_types_stage (pokemon_id BIGINT, type_id BIGINT)
			ON COMMIT DROP
		`)
		if err != nil {
			return fmt.Errorf("create stage table: %w", err)
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"pokemon_types_stage"},
			[]string{"pokemon_id", "type_id"},
			pgx.CopyFromSlice(len(links), func(i int) ([]any, error) {
				return []any{links[i].PokemonID, links[i].TypeID}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy pokemon types: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO pokemon_types (pokemon_id, type_id)
			SELECT DISTINCT pokemon_id, type_id FROM pokemon_types_stage
			ON CONFLICT DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("insert pokemon types: %w", err)
		}
		inserted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}
