package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/pokeflow/internal/domain"
	"github.com/shaiso/pokeflow/internal/evolution"
	"github.com/shaiso/pokeflow/internal/mq"
	"github.com/shaiso/pokeflow/internal/telemetry"
)

// HandleDelivery выбирает обработчик по типу сообщения.
func (l *Loader) HandleDelivery(ctx context.Context, delivery *mq.Delivery) error {
	msg := &delivery.Message
	ctx = telemetry.WithLogger(ctx, telemetry.WithMessageID(l.logger, msg.ID).With("type", msg.Type))

	handler, ok := l.handlers[msg.Type]
	if !ok {
		telemetry.MessagesProcessed.WithLabelValues(string(msg.Type), "rejected").Inc()
		return fmt.Errorf("%w: %w: %q", mq.ErrReject, ErrUnknownMessageType, msg.Type)
	}

	if err := handler(ctx, delivery); err != nil {
		telemetry.MessagesProcessed.WithLabelValues(string(msg.Type), "failed").Inc()
		return err
	}

	telemetry.MessagesProcessed.WithLabelValues(string(msg.Type), "ok").Inc()
	return nil
}

// handlePokemonBatch обрабатывает pokemon.batch.
func (l *Loader) handlePokemonBatch(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.PokemonBatchPayload](&delivery.Message)
	if err != nil {
		return err
	}

	_, err = l.LoadPokemon(ctx, payload.Pokemon)
	return err
}

// handleEvolutionBatch обрабатывает evolution.batch.
func (l *Loader) handleEvolutionBatch(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.EvolutionBatchPayload](&delivery.Message)
	if err != nil {
		return err
	}

	_, err = l.LoadEvolutions(ctx, payload.Chains)
	return err
}

// handleTypeBatch обрабатывает type.batch.
func (l *Loader) handleTypeBatch(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.TypeBatchPayload](&delivery.Message)
	if err != nil {
		return err
	}

	_, err = l.LoadTypes(ctx, payload.Types)
	return err
}

// PokemonReport — итоги загрузки покемонов.
type PokemonReport struct {
	Rows    int
	Skipped int
	Written int64
}

// LoadPokemon преобразует документы в строки и записывает их одним пакетом.
// Документ без нужных характеристик пропускается.
func (l *Loader) LoadPokemon(ctx context.Context, pokemon []domain.Pokemon) (*PokemonReport, error) {
	logger := l.loggerFrom(ctx)
	report := &PokemonReport{}

	rows := make([]domain.PokemonRow, 0, len(pokemon))
	for i := range pokemon {
		row, err := pokemon[i].ToRow()
		if err != nil {
			logger.Warn("skipping pokemon", "pokemon_id", pokemon[i].ID, "error", err)
			report.Skipped++
			continue
		}
		rows = append(rows, row)
	}
	report.Rows = len(rows)

	if len(rows) == 0 {
		return report, nil
	}

	written, err := l.pokemon.InsertPokemon(ctx, rows)
	if err != nil {
		return report, fmt.Errorf("insert pokemon: %w", err)
	}
	report.Written = written
	telemetry.RowsInserted.WithLabelValues("pokemons").Add(float64(written))

	logger.Info("pokemon loaded", "rows", report.Rows, "skipped", report.Skipped, "written", written)
	return report, nil
}

// EvolutionReport — итоги загрузки цепочек эволюции.
type EvolutionReport struct {
	Chains     int   // цепочек в пакете
	Loaded     int   // цепочек, записанных в хранилище
	Unevolving int   // цепочек из одного вида (записей нет)
	Rejected   int   // некорректных цепочек
	SinkFailed int   // цепочек, которые не удалось записать
	Records    int   // записей получено от flattener'а
	Written    int64 // новых строк в evolutions
}

// LoadEvolutions разворачивает и записывает каждую цепочку отдельно.
//
// Ошибка одной цепочки не влияет на остальные. Если запись хотя бы одной
// цепочки не удалась, возвращается ErrSinkFailed вместе с отчётом.
func (l *Loader) LoadEvolutions(ctx context.Context, chains []domain.EvolutionChain) (*EvolutionReport, error) {
	logger := l.loggerFrom(ctx)
	report := &EvolutionReport{Chains: len(chains)}
	var sinkErrs []error

	for i := range chains {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		chain := &chains[i]
		chainLogger := telemetry.WithChainID(logger, chain.ID).With("species", chain.Chain.SpeciesName())

		records, err := l.flattener.Flatten(&chain.Chain)
		if err != nil {
			report.Rejected++
			telemetry.ChainsFlattened.WithLabelValues(rejectReason(err)).Inc()
			chainLogger.Warn("skipping evolution chain", "error", err)
			continue
		}

		if len(records) == 0 {
			report.Unevolving++
			telemetry.ChainsFlattened.WithLabelValues("unevolving").Inc()
			continue
		}
		report.Records += len(records)

		written, err := l.emit(ctx, records)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.SinkFailed++
			telemetry.ChainsFlattened.WithLabelValues("sink_error").Inc()
			chainLogger.Error("failed to store evolution chain", "records", len(records), "error", err)
			sinkErrs = append(sinkErrs, fmt.Errorf("chain %d: %w", chain.ID, err))
			continue
		}

		report.Loaded++
		report.Written += written
		telemetry.ChainsFlattened.WithLabelValues("ok").Inc()
		chainLogger.Debug("evolution chain stored", "records", len(records), "written", written)
	}

	logger.Info("evolution chains loaded",
		"chains", report.Chains,
		"loaded", report.Loaded,
		"unevolving", report.Unevolving,
		"rejected", report.Rejected,
		"sink_failed", report.SinkFailed,
		"records", report.Records,
		"written", report.Written,
	)

	if len(sinkErrs) > 0 {
		return report, fmt.Errorf("%w: %d of %d chains: %w", ErrSinkFailed, report.SinkFailed, report.Chains, errors.Join(sinkErrs...))
	}
	return report, nil
}

// emit передаёт записи одной цепочки в хранилище одним пакетом.
func (l *Loader) emit(ctx context.Context, records []domain.EvolutionRecord) (int64, error) {
	written, err := l.evolutions.InsertEvolutions(ctx, records)
	if err != nil {
		return 0, err
	}

	telemetry.EvolutionRecords.Add(float64(len(records)))
	telemetry.RowsInserted.WithLabelValues("evolutions").Add(float64(written))
	return written, nil
}

// loggerFrom возвращает логгер сообщения, если он есть в контексте.
func (l *Loader) loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(telemetry.CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return l.logger
}

// rejectReason — метка метрики для ошибки разворачивания.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, evolution.ErrDepthOverflow):
		return "overflow"
	case errors.Is(err, evolution.ErrMalformedChain), errors.Is(err, evolution.ErrNilRoot):
		return "malformed"
	default:
		return "error"
	}
}

// TypeReport — итоги загрузки типов.
type TypeReport struct {
	Types          int
	Relations      int
	UnknownPokemon int
	Links          int64
}

// LoadTypes записывает типы и связи покемон-тип.
//
// Связи разрешаются в id через уже загруженные таблицы; покемоны,
// которых нет в pokemons, пропускаются.
func (l *Loader) LoadTypes(ctx context.Context, types []domain.PokemonType) (*TypeReport, error) {
	logger := l.loggerFrom(ctx)
	names, relations := domain.SplitTypes(types)
	report := &TypeReport{Types: len(names), Relations: len(relations)}

	if len(names) == 0 {
		return report, nil
	}

	written, err := l.types.InsertTypes(ctx, names)
	if err != nil {
		return report, fmt.Errorf("insert types: %w", err)
	}
	telemetry.RowsInserted.WithLabelValues("types").Add(float64(written))

	typeIDs, err := l.types.NameIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("load type ids: %w", err)
	}
	pokemonIDs, err := l.pokemon.NameIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("load pokemon ids: %w", err)
	}

	links := make([]domain.TypeLink, 0, len(relations))
	for _, rel := range relations {
		pokemonID, ok := pokemonIDs[rel.PokemonName]
		if !ok {
			report.UnknownPokemon++
			continue
		}
		typeID, ok := typeIDs[rel.TypeName]
		if !ok {
			return report, fmt.Errorf("type %q missing after insert", rel.TypeName)
		}
		links = append(links, domain.TypeLink{PokemonID: pokemonID, TypeID: typeID})
	}

	if report.UnknownPokemon > 0 {
		logger.Warn("skipping relations with unknown pokemon", "count", report.UnknownPokemon)
	}

	if len(links) > 0 {
		report.Links, err = l.types.InsertLinks(ctx, links)
		if err != nil {
			return report, fmt.Errorf("insert pokemon types: %w", err)
		}
		telemetry.RowsInserted.WithLabelValues("pokemon_types").Add(float64(report.Links))
	}

	logger.Info("types loaded",
		"types", report.Types,
		"relations", report.Relations,
		"unknown_pokemon", report.UnknownPokemon,
		"links", report.Links,
	)
	return report, nil
}
