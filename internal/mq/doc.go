// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация пакетов данных PokeAPI
//   - consumer.go   — потребление сообщений из очереди ingest.pipeline
//
// Типы сообщений:
//   - pokemon.batch    — документы /pokemon
//   - evolution.batch  — документы /evolution-chain
//   - type.batch       — документы /type
//
// Exchanges:
//   - pokeflow.ingest  — пакеты от extractor'а
//   - pokeflow.dlq     — dead letter queue
package mq
