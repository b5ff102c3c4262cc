// Package cli реализует инструмент командной строки Pokeflow.
//
// # Обзор
//
// CLI разворачивает цепочки эволюции из JSON-файлов без брокера и БД,
// показывает сохранённые записи и запускает однократную выгрузку PokeAPI.
//
// # Ключевые компоненты
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Warn/Error) — в stderr.
// Это позволяет использовать pipe: pokeflow evolution flatten chain.json --json | jq .
//
// ## Commands
//
//   - evolution: flatten, list
//   - extract
//
// Каждая группа создаётся через фабричную функцию (NewEvolutionCmd и т.д.),
// принимающую замыкания для ленивого создания Output после парсинга
// PersistentFlags.
package cli
