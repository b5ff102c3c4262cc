// Package telemetry обеспечивает наблюдаемость Pokeflow.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики extractor'а и loader'а
//
// Все сервисы используют единый формат логирования
// и экспортируют метрики на /metrics endpoint.
package telemetry
