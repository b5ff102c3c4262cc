package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/pokeflow/internal/domain"
	"github.com/shaiso/pokeflow/internal/pokeapi"
	"github.com/shaiso/pokeflow/internal/telemetry"
)

const defaultConcurrency = 8

// Publisher отправляет пакеты дальше по конвейеру.
type Publisher interface {
	PublishPokemon(ctx context.Context, pokemon []domain.Pokemon) error
	PublishEvolutions(ctx context.Context, chains []domain.EvolutionChain) error
	PublishTypes(ctx context.Context, types []domain.PokemonType) error
}

// Extractor выгружает покемонов, цепочки эволюции и типы.
type Extractor struct {
	client    *pokeapi.Client
	publisher Publisher
	logger    *slog.Logger

	concurrency    int
	pokemonLimit   int
	evolutionLimit int
}

// Config — конфигурация Extractor.
type Config struct {
	Client    *pokeapi.Client
	Publisher Publisher

	// Concurrency — параллельные загрузки ресурсов (default: 8).
	Concurrency int

	// PokemonLimit и EvolutionLimit — limit для списков; <= 0 — все страницы.
	PokemonLimit   int
	EvolutionLimit int

	Logger *slog.Logger
}

// Stats — итоги одного запуска.
type Stats struct {
	Pokemon  int
	Chains   int
	Types    int
	Skipped  int
	Duration time.Duration
}

// New создаёт новый Extractor.
func New(cfg Config) *Extractor {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		client:         cfg.Client,
		publisher:      cfg.Publisher,
		logger:         logger,
		concurrency:    concurrency,
		pokemonLimit:   cfg.PokemonLimit,
		evolutionLimit: cfg.EvolutionLimit,
	}
}

// Run выполняет одну полную выгрузку.
func (e *Extractor) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	e.logger.Info("extraction started")

	pokemon, skipped, err := fetchAll[domain.Pokemon](ctx, e, pokeapi.ResourcePokemon, e.pokemonLimit)
	if err != nil {
		return nil, err
	}
	stats.Skipped += skipped
	if err := e.publisher.PublishPokemon(ctx, pokemon); err != nil {
		return nil, fmt.Errorf("publish pokemon: %w", err)
	}
	stats.Pokemon = len(pokemon)

	chains, skipped, err := fetchAll[domain.EvolutionChain](ctx, e, pokeapi.ResourceEvolutionChain, e.evolutionLimit)
	if err != nil {
		return nil, err
	}
	stats.Skipped += skipped
	if err := e.publisher.PublishEvolutions(ctx, chains); err != nil {
		return nil, fmt.Errorf("publish evolutions: %w", err)
	}
	stats.Chains = len(chains)

	types, skipped, err := fetchAll[domain.PokemonType](ctx, e, pokeapi.ResourceType, 0)
	if err != nil {
		return nil, err
	}
	stats.Skipped += skipped
	if err := e.publisher.PublishTypes(ctx, types); err != nil {
		return nil, fmt.Errorf("publish types: %w", err)
	}
	stats.Types = len(types)

	stats.Duration = time.Since(start)
	telemetry.ExtractDuration.Observe(stats.Duration.Seconds())

	e.logger.Info("extraction completed",
		"pokemon", stats.Pokemon,
		"chains", stats.Chains,
		"types", stats.Types,
		"skipped", stats.Skipped,
		"duration", stats.Duration,
	)

	return stats, nil
}

// fetchAll загружает все ресурсы списка с ограниченной параллельностью.
// Возвращает документы в порядке списка и количество пропущенных.
func fetchAll[T any](ctx context.Context, e *Extractor, resource string, limit int) ([]T, int, error) {
	logger := telemetry.WithResource(e.logger, resource)

	refs, err := e.client.List(ctx, resource, limit)
	if err != nil {
		return nil, 0, err
	}

	logger.Info("fetching resources", "count", len(refs))

	results := make([]T, len(refs))
	fetched := make([]bool, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			doc, err := pokeapi.Fetch[T](gctx, e.client, ref.URL)
			if err != nil {
				var statusErr *pokeapi.StatusError
				if errors.As(err, &statusErr) && !statusErr.Retryable() {
					logger.Warn("skipping resource", "name", ref.Name, "url", ref.URL, "status", statusErr.StatusCode)
					return nil
				}
				return fmt.Errorf("fetch %s %s: %w", resource, ref.Name, err)
			}
			results[i] = doc
			fetched[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	docs := make([]T, 0, len(refs))
	for i := range results {
		if fetched[i] {
			docs = append(docs, results[i])
		}
	}

	return docs, len(refs) - len(docs), nil
}
