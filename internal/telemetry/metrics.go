package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики loader'а.
var (
	// MessagesProcessed — обработанные сообщения по типу и результату.
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeflow_loader_messages_total",
		Help: "Messages handled by the loader.",
	}, []string{"type", "result"})

	// ChainsFlattened — цепочки эволюции по результату (ok, malformed, overflow, sink_error).
	ChainsFlattened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeflow_evolution_chains_total",
		Help: "Evolution chains processed by the flattener.",
	}, []string{"result"})

	// EvolutionRecords — записи, переданные в таблицу evolutions.
	EvolutionRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokeflow_evolution_records_total",
		Help: "Evolution records written to storage.",
	})

	// RowsInserted — строки, вставленные в таблицы.
	RowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeflow_rows_inserted_total",
		Help: "Rows inserted per table.",
	}, []string{"table"})
)

// Метрики extractor'а.
var (
	// APIRequests — запросы к PokeAPI по коду результата.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeflow_pokeapi_requests_total",
		Help: "Requests sent to PokeAPI.",
	}, []string{"code"})

	// APICacheHits — ответы PokeAPI, взятые из кэша.
	APICacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokeflow_pokeapi_cache_hits_total",
		Help: "PokeAPI responses served from cache.",
	})

	// ExtractDuration — длительность одной выгрузки.
	ExtractDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pokeflow_extract_duration_seconds",
		Help:    "Duration of one full extraction.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)
