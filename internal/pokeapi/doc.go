// Package pokeapi — клиент PokeAPI (https://pokeapi.co).
//
// Client выполняет GET-запросы с ограничением частоты (rate.Limiter),
// повторяет запросы при сетевых ошибках, 429 и 5xx с экспоненциальной
// задержкой и может кэшировать тела ответов (Cache, например RedisCache).
//
//	client := pokeapi.New(pokeapi.Config{BaseURL: pokeapi.DefaultBaseURL, RPS: 20})
//	refs, err := client.List(ctx, pokeapi.ResourceEvolutionChain, 500)
//	chain, err := pokeapi.Fetch[domain.EvolutionChain](ctx, client, refs[0].URL)
package pokeapi
