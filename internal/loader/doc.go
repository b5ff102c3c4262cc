// Package loader загружает пакеты PokeAPI из RabbitMQ в PostgreSQL.
//
// # Обзор
//
// Loader потребляет очередь ingest.pipeline и по типу сообщения
// выбирает обработчик:
//
//   - pokemon.batch   — строки таблицы pokemons
//   - evolution.batch — цепочки эволюции разворачиваются (пакет evolution)
//     и записываются в evolutions, по одной транзакции на цепочку
//   - type.batch      — таблица types и связи pokemon_types
//
// # Ошибки
//
// Некорректная цепочка (пустое имя, больше трёх стадий) логируется с
// id цепочки и именем базовой формы и пропускается; остальные цепочки
// пакета загружаются. Ошибка записи одной цепочки не останавливает
// остальные, но пакет целиком возвращается с ошибкой: consumer вернёт
// его в очередь один раз, затем отправит в DLQ. Повторная загрузка
// безопасна, уже записанные строки пропускаются.
//
// Неизвестный тип сообщения и нечитаемый payload сразу уходят в DLQ
// (mq.ErrReject).
package loader
