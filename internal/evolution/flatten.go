package evolution

import (
	"fmt"
	"strings"

	"github.com/shaiso/pokeflow/internal/domain"
)

// OverflowPolicy — поведение для путей длиннее domain.MaxStages.
type OverflowPolicy string

const (
	// OverflowReject — вернуть *DepthOverflowError, записи не выпускаются.
	OverflowReject OverflowPolicy = "reject"

	// OverflowTruncate — оставить первые три стадии, остальные отбросить.
	OverflowTruncate OverflowPolicy = "truncate"
)

// ParseOverflowPolicy парсит строку в OverflowPolicy.
// Пустая строка означает OverflowReject.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch OverflowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverflowReject:
		return OverflowReject, nil
	case OverflowTruncate:
		return OverflowTruncate, nil
	default:
		return "", fmt.Errorf("unknown overflow policy %q", s)
	}
}

// Options — настройки разворачивания.
type Options struct {
	// Overflow — политика для слишком длинных путей (default: OverflowReject).
	Overflow OverflowPolicy
}

// Flattener разворачивает деревья с фиксированными Options.
// Не хранит состояния между вызовами.
type Flattener struct {
	opts Options
}

// NewFlattener создаёт новый Flattener.
func NewFlattener(opts Options) *Flattener {
	if opts.Overflow == "" {
		opts.Overflow = OverflowReject
	}
	return &Flattener{opts: opts}
}

// Policy возвращает политику переполнения.
func (f *Flattener) Policy() OverflowPolicy {
	return f.opts.Overflow
}

// Flatten разворачивает дерево с настройками Flattener.
func (f *Flattener) Flatten(root *domain.ChainNode) ([]domain.EvolutionRecord, error) {
	return FlattenWithOptions(root, f.opts)
}

// Flatten разворачивает дерево эволюции в записи.
//
// Пути длиннее трёх стадий отклоняются (*DepthOverflowError).
// Корень без детей даёт пустой результат без ошибки.
func Flatten(root *domain.ChainNode) ([]domain.EvolutionRecord, error) {
	return FlattenWithOptions(root, Options{})
}

// FlattenWithOptions разворачивает дерево эволюции в записи.
//
// Записи идут в порядке обнаружения терминальных узлов обходом в глубину.
// При любой ошибке результат не возвращается целиком: частичное
// применение невозможно.
func FlattenWithOptions(root *domain.ChainNode, opts Options) ([]domain.EvolutionRecord, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	if root.SpeciesName() == "" {
		return nil, &MalformedChainError{Reason: "root has empty species name"}
	}

	// Вид без эволюций — хранить нечего.
	if root.IsTerminal() {
		return nil, nil
	}

	c := &collector{overflow: opts.Overflow}
	if c.overflow == "" {
		c.overflow = OverflowReject
	}

	if _, err := c.visit(root, path{root.SpeciesName()}); err != nil {
		return nil, err
	}

	return c.records, nil
}

// outcome — результат посещения узла.
type outcome int

const (
	// outcomeTerminal — узел терминальный, путь до него нужно упаковать.
	outcomeTerminal outcome = iota + 1

	// outcomeDescended — записи поддерева уже выпущены.
	outcomeDescended
)

// path — неизменяемый путь от корня.
type path []string

// extend возвращает новый путь; исходный не меняется.
func (p path) extend(name string) path {
	next := make(path, len(p), len(p)+1)
	copy(next, p)
	return append(next, name)
}

// collector собирает записи одного вызова FlattenWithOptions.
type collector struct {
	overflow OverflowPolicy
	records  []domain.EvolutionRecord

	// truncated — уже выпущенные обрезанные пути (для OverflowTruncate).
	truncated map[string]struct{}
}

// visit обходит детей узла. Путь p заканчивается на сам узел.
func (c *collector) visit(node *domain.ChainNode, p path) (outcome, error) {
	if node.IsTerminal() {
		return outcomeTerminal, nil
	}

	for i := range node.EvolvesTo {
		child := &node.EvolvesTo[i]
		if child.SpeciesName() == "" {
			return 0, &MalformedChainError{
				Path:   p,
				Reason: fmt.Sprintf("evolution #%d has empty species name", i),
			}
		}

		childPath := p.extend(child.SpeciesName())
		if len(childPath) > domain.MaxStages && c.overflow == OverflowReject {
			return 0, &DepthOverflowError{Path: childPath, Limit: domain.MaxStages}
		}

		result, err := c.visit(child, childPath)
		if err != nil {
			return 0, err
		}

		switch result {
		case outcomeTerminal:
			if err := c.emit(childPath); err != nil {
				return 0, err
			}
		case outcomeDescended:
			// записи выпущены глубже
		}
	}

	return outcomeDescended, nil
}

// emit упаковывает завершённый путь в запись.
func (c *collector) emit(p path) error {
	if len(p) > domain.MaxStages {
		if c.overflow != OverflowTruncate {
			return &DepthOverflowError{Path: p, Limit: domain.MaxStages}
		}

		p = p[:domain.MaxStages]
		key := strings.Join(p, "\x00")
		if _, ok := c.truncated[key]; ok {
			return nil
		}
		if c.truncated == nil {
			c.truncated = make(map[string]struct{})
		}
		c.truncated[key] = struct{}{}
	}

	record, err := domain.NewEvolutionRecord(p)
	if err != nil {
		return err
	}
	c.records = append(c.records, record)
	return nil
}
