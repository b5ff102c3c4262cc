package domain

// NamedResource — ссылка на ресурс PokeAPI.
type NamedResource struct {
	// Name — имя ресурса (например, "bulbasaur").
	Name string `json:"name"`

	// URL — адрес ресурса в PokeAPI.
	URL string `json:"url,omitempty"`
}

// ChainNode — узел дерева эволюции.
//
// Корень дерева — базовая форма, дети — её прямые эволюции.
// Порядок детей определяет только порядок выходных записей.
//
// Дети хранятся по значению, поэтому дерево конечно и ациклично
// по построению.
type ChainNode struct {
	// Species — вид в этом узле.
	Species NamedResource `json:"species"`

	// EvolvesTo — прямые эволюции. Пустой список — терминальный узел.
	EvolvesTo []ChainNode `json:"evolves_to"`
}

// SpeciesName возвращает имя вида в узле.
func (n *ChainNode) SpeciesName() string {
	return n.Species.Name
}

// IsTerminal возвращает true, если у узла нет эволюций.
func (n *ChainNode) IsTerminal() bool {
	return len(n.EvolvesTo) == 0
}

// Depth возвращает количество стадий на самом длинном пути от узла.
func (n *ChainNode) Depth() int {
	deepest := 0
	for i := range n.EvolvesTo {
		deepest = max(deepest, n.EvolvesTo[i].Depth())
	}
	return deepest + 1
}

// NewChainNode создаёт узел с указанными детьми.
func NewChainNode(name string, children ...ChainNode) ChainNode {
	return ChainNode{
		Species:   NamedResource{Name: name},
		EvolvesTo: children,
	}
}

// EvolutionChain — документ /evolution-chain/{id} из PokeAPI.
type EvolutionChain struct {
	// ID — идентификатор цепочки в PokeAPI.
	ID int `json:"id"`

	// Chain — корень дерева эволюции.
	Chain ChainNode `json:"chain"`
}
