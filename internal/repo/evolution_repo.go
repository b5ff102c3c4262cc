package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/pokeflow/internal/domain"
)

// EvolutionRepo — репозиторий таблицы evolutions.
type EvolutionRepo struct {
	pool *pgxpool.Pool
}

// NewEvolutionRepo создаёт новый EvolutionRepo.
func NewEvolutionRepo(pool *pgxpool.Pool) *EvolutionRepo {
	return &EvolutionRepo{pool: pool}
}

// InsertEvolutions вставляет записи одной цепочки в одной транзакции.
//
// Либо вставлены все записи, либо ни одной. Уже существующие
// записи пропускаются. Возвращает количество новых строк.
func (r *EvolutionRepo) InsertEvolutions(ctx context.Context, records []domain.EvolutionRecord) (int64, error) {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return 0, fmt.Errorf("%w: evolution %d: %v", ErrInvalidRecord, i, err)
		}
	}

	query := `
		INSERT INTO evolutions (first_form, second_form, third_form)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`

	var inserted int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(query, rec.FirstForm, rec.SecondForm, rec.ThirdForm)
		}

		results := tx.SendBatch(ctx, batch)
		for range records {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("insert evolution: %w", err)
			}
			inserted += tag.RowsAffected()
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// List возвращает записи в порядке вставки.
func (r *EvolutionRepo) List(ctx context.Context, limit int) ([]domain.EvolutionRecord, error) {
	query := `
		SELECT first_form, second_form, third_form
		FROM evolutions
		ORDER BY evolution_id ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list evolutions: %w", err)
	}
	return pgx.CollectRows(rows, scanEvolution)
}

// ListByForm возвращает записи, в которых участвует вид.
func (r *EvolutionRepo) ListByForm(ctx context.Context, name string) ([]domain.EvolutionRecord, error) {
	query := `
		SELECT first_form, second_form, third_form
		FROM evolutions
		WHERE first_form = $1 OR second_form = $1 OR third_form = $1
		ORDER BY evolution_id ASC
	`
	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("list evolutions by form: %w", err)
	}
	return pgx.CollectRows(rows, scanEvolution)
}

func scanEvolution(row pgx.CollectableRow) (domain.EvolutionRecord, error) {
	var rec domain.EvolutionRecord
	err := row.Scan(&rec.FirstForm, &rec.SecondForm, &rec.ThirdForm)
	return rec, err
}
