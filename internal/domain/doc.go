// Package domain содержит модели данных Pokeflow.
//
// Модели делятся на две группы:
//   - входные документы PokeAPI (ChainNode, EvolutionChain, Pokemon, PokemonType)
//   - строки для хранения в PostgreSQL (EvolutionRecord, PokemonRow, TypeRelation)
//
// Пакет не зависит от транспорта и хранилища.
package domain
