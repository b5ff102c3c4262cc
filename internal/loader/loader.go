package loader

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shaiso/pokeflow/internal/domain"
	"github.com/shaiso/pokeflow/internal/evolution"
	"github.com/shaiso/pokeflow/internal/mq"
)

// Пакеты обрабатываются по одному, чтобы типы загружались после покемонов.
const defaultPrefetch = 1

// PokemonStore — хранилище таблицы pokemons.
type PokemonStore interface {
	InsertPokemon(ctx context.Context, rows []domain.PokemonRow) (int64, error)
	NameIDs(ctx context.Context) (map[string]int64, error)
}

// EvolutionSink — хранилище таблицы evolutions.
// InsertEvolutions записывает пакет одной цепочки целиком или не записывает ничего.
type EvolutionSink interface {
	InsertEvolutions(ctx context.Context, records []domain.EvolutionRecord) (int64, error)
}

// TypeStore — хранилище таблиц types и pokemon_types.
type TypeStore interface {
	InsertTypes(ctx context.Context, names []string) (int64, error)
	NameIDs(ctx context.Context) (map[string]int64, error)
	InsertLinks(ctx context.Context, links []domain.TypeLink) (int64, error)
}

// Loader загружает пакеты из очереди в БД.
type Loader struct {
	pokemon    PokemonStore
	evolutions EvolutionSink
	types      TypeStore
	flattener  *evolution.Flattener

	conn     *mq.Connection
	consumer *mq.Consumer
	handlers map[mq.MessageType]mq.Handler

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Loader.
type Config struct {
	// Хранилища
	Pokemon    PokemonStore
	Evolutions EvolutionSink
	Types      TypeStore

	// Overflow — политика для цепочек длиннее трёх стадий (default: reject).
	Overflow evolution.OverflowPolicy

	// MQ
	Conn *mq.Connection

	Logger *slog.Logger
}

// New создаёт новый Loader.
func New(cfg Config) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	l := &Loader{
		pokemon:    cfg.Pokemon,
		evolutions: cfg.Evolutions,
		types:      cfg.Types,
		flattener:  evolution.NewFlattener(evolution.Options{Overflow: cfg.Overflow}),
		conn:       cfg.Conn,
		logger:     logger,
	}

	l.handlers = map[mq.MessageType]mq.Handler{
		mq.MessageTypePokemonBatch:   l.handlePokemonBatch,
		mq.MessageTypeEvolutionBatch: l.handleEvolutionBatch,
		mq.MessageTypeTypeBatch:      l.handleTypeBatch,
	}

	return l
}

// Start запускает consumer очереди ingest.pipeline.
func (l *Loader) Start(ctx context.Context) error {
	if l.IsStopped() {
		return ErrLoaderStopped
	}

	ctx, cancel := context.WithCancel(ctx)
	l.cancelFunc = cancel

	l.logger.Info("starting loader", "overflow_policy", l.flattener.Policy())

	l.consumer = mq.NewConsumer(l.conn, l.logger, mq.ConsumerConfig{
		Queue:    string(mq.QueueIngest),
		Handler:  l.HandleDelivery,
		Prefetch: defaultPrefetch,
	})

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.logger.Error("ingest consumer error", "error", err)
		}
	}()

	l.logger.Info("loader started")
	return nil
}

// Stop останавливает Loader и ждёт завершения обработки.
func (l *Loader) Stop() {
	l.stoppedMu.Lock()
	l.stopped = true
	l.stoppedMu.Unlock()

	l.logger.Info("stopping loader...")

	if l.cancelFunc != nil {
		l.cancelFunc()
	}
	if l.consumer != nil {
		l.consumer.Stop()
	}

	l.wg.Wait()

	l.logger.Info("loader stopped")
}

// IsStopped проверяет, остановлен ли Loader.
func (l *Loader) IsStopped() bool {
	l.stoppedMu.RLock()
	defer l.stoppedMu.RUnlock()
	return l.stopped
}
