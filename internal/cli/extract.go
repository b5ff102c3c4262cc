package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/pokeflow/internal/config"
	"github.com/shaiso/pokeflow/internal/extractor"
	"github.com/shaiso/pokeflow/internal/mq"
	"github.com/shaiso/pokeflow/internal/pokeapi"
)

// NewExtractCmd создаёт команду однократной выгрузки PokeAPI в очередь.
func NewExtractCmd(cfg *config.Config, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Fetch PokeAPI resources once and publish them to the ingest queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			stats, err := RunExtraction(ctx, cfg, slog.Default())
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Extraction finished in %s", stats.Duration.Round(time.Millisecond)))
			out.Print(
				[]string{"POKEMON", "CHAINS", "TYPES", "SKIPPED"},
				[][]string{{
					strconv.Itoa(stats.Pokemon),
					strconv.Itoa(stats.Chains),
					strconv.Itoa(stats.Types),
					strconv.Itoa(stats.Skipped),
				}},
				stats,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.PokeAPIURL, "pokeapi-url", cfg.PokeAPIURL, "PokeAPI base URL")
	cmd.Flags().StringVar(&cfg.RabbitMQURL, "rabbitmq-url", cfg.RabbitMQURL, "RabbitMQ URL")
	cmd.Flags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for response cache (empty disables cache)")
	cmd.Flags().IntVar(&cfg.PokemonLimit, "pokemon-limit", cfg.PokemonLimit, "Number of pokemon to list")
	cmd.Flags().IntVar(&cfg.EvolutionLimit, "evolution-limit", cfg.EvolutionLimit, "Number of evolution chains to list")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Parallel PokeAPI requests")

	return cmd
}

// RunExtraction подключается к брокеру и выполняет одну выгрузку.
func RunExtraction(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*extractor.Stats, error) {
	var cache pokeapi.Cache
	if cfg.RedisURL != "" {
		redisCache, err := pokeapi.NewRedisCacheFromURL(ctx, cfg.RedisURL, pokeapi.DefaultCacheTTL)
		if err != nil {
			return nil, err
		}
		defer redisCache.Close()
		cache = redisCache
	}

	client := pokeapi.New(pokeapi.Config{
		BaseURL: cfg.PokeAPIURL,
		RPS:     cfg.RPS,
		Cache:   cache,
		Logger:  logger,
	})

	conn, err := mq.NewConnection(cfg.RabbitMQURL, logger)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer conn.Close()

	if err := mq.SetupTopology(ctx, conn); err != nil {
		return nil, fmt.Errorf("setup topology: %w", err)
	}

	ext := extractor.New(extractor.Config{
		Client:         client,
		Publisher:      mq.NewPublisher(conn, logger),
		Concurrency:    cfg.Concurrency,
		PokemonLimit:   cfg.PokemonLimit,
		EvolutionLimit: cfg.EvolutionLimit,
		Logger:         logger,
	})

	return ext.Run(ctx)
}
