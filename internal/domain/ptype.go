package domain

// PokemonType — документ /type/{id} из PokeAPI (используемые поля).
type PokemonType struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Pokemon []TypePokemon `json:"pokemon"`
}

// TypePokemon — покемон, имеющий тип.
type TypePokemon struct {
	Slot    int           `json:"slot"`
	Pokemon NamedResource `json:"pokemon"`
}

// TypeRelation — связь покемона с типом по именам.
type TypeRelation struct {
	PokemonName string `json:"pokemon_name"`
	TypeName    string `json:"type_name"`
}

// TypeLink — строка таблицы pokemon_types.
type TypeLink struct {
	PokemonID int64 `json:"pokemon_id"`
	TypeID    int64 `json:"type_id"`
}

// SplitTypes разделяет документы типов на имена и связи покемон-тип.
//
// Порядок сохраняется: сначала по типам, внутри — по списку покемонов.
func SplitTypes(types []PokemonType) ([]string, []TypeRelation) {
	names := make([]string, 0, len(types))
	var relations []TypeRelation

	for _, t := range types {
		names = append(names, t.Name)
		for _, p := range t.Pokemon {
			relations = append(relations, TypeRelation{
				PokemonName: p.Pokemon.Name,
				TypeName:    t.Name,
			})
		}
	}

	return names, relations
}
