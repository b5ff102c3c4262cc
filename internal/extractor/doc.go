// Package extractor выгружает данные из PokeAPI и публикует их в RabbitMQ.
//
// Один запуск (Run) выполняет три шага по порядку:
//
//  1. /pokemon          → pokemon.batch
//  2. /evolution-chain  → evolution.batch
//  3. /type             → type.batch
//
// Ресурсы каждого шага загружаются параллельно (errgroup с лимитом),
// порядок в пакете совпадает с порядком списка PokeAPI. Ресурс, на
// который API ответил 4xx, пропускается с предупреждением; остальные
// ошибки прерывают запуск.
package extractor
