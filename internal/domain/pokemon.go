package domain

import (
	"errors"
	"fmt"
)

// Имена базовых характеристик в PokeAPI.
const (
	StatHP             = "hp"
	StatAttack         = "attack"
	StatDefense        = "defense"
	StatSpecialAttack  = "special-attack"
	StatSpecialDefense = "special-defense"
	StatSpeed          = "speed"
)

// ErrMissingStat — у покемона нет обязательной характеристики.
var ErrMissingStat = errors.New("missing base stat")

// Pokemon — документ /pokemon/{id} из PokeAPI (используемые поля).
type Pokemon struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Height         int           `json:"height"`
	BaseExperience *int          `json:"base_experience"`
	IsDefault      bool          `json:"is_default"`
	Stats          []PokemonStat `json:"stats"`
}

// PokemonStat — одна базовая характеристика покемона.
type PokemonStat struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

// PokemonRow — строка таблицы pokemons.
type PokemonRow struct {
	Name           string `json:"name"`
	Height         int    `json:"height"`
	BaseExperience *int   `json:"base_experience"`
	IsDefault      bool   `json:"is_default"`
	HP             int    `json:"hp"`
	Attack         int    `json:"attack"`
	Defense        int    `json:"defense"`
	SpecialAttack  int    `json:"special_attack"`
	SpecialDefense int    `json:"special_defense"`
	Speed          int    `json:"speed"`
}

// ToRow преобразует документ PokeAPI в строку таблицы.
//
// Характеристики ищутся по имени, а не по позиции в списке.
func (p *Pokemon) ToRow() (PokemonRow, error) {
	if p.Name == "" {
		return PokemonRow{}, errors.New("pokemon has empty name")
	}

	stats := make(map[string]int, len(p.Stats))
	for _, s := range p.Stats {
		stats[s.Stat.Name] = s.BaseStat
	}

	row := PokemonRow{
		Name:           p.Name,
		Height:         p.Height,
		BaseExperience: p.BaseExperience,
		IsDefault:      p.IsDefault,
	}

	targets := []struct {
		name string
		dst  *int
	}{
		{StatHP, &row.HP},
		{StatAttack, &row.Attack},
		{StatDefense, &row.Defense},
		{StatSpecialAttack, &row.SpecialAttack},
		{StatSpecialDefense, &row.SpecialDefense},
		{StatSpeed, &row.Speed},
	}
	for _, t := range targets {
		v, ok := stats[t.name]
		if !ok {
			return PokemonRow{}, fmt.Errorf("%w: %s: %s", ErrMissingStat, p.Name, t.name)
		}
		*t.dst = v
	}

	return row, nil
}
