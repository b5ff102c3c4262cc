package evolution

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки разворачивания цепочки.
var (
	// ErrNilRoot — дерево не передано.
	ErrNilRoot = errors.New("evolution chain root is nil")

	// ErrMalformedChain — узел дерева некорректен.
	ErrMalformedChain = errors.New("malformed evolution chain")

	// ErrDepthOverflow — путь длиннее, чем помещается в запись.
	ErrDepthOverflow = errors.New("evolution path exceeds supported depth")
)

// MalformedChainError — некорректный узел с путём до него.
type MalformedChainError struct {
	Path   []string // путь до родителя некорректного узла
	Reason string   // описание проблемы
}

// Error реализует интерфейс error.
func (e *MalformedChainError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedChain, e.Reason)
	}
	return fmt.Sprintf("%s: %s (after %s)", ErrMalformedChain, e.Reason, strings.Join(e.Path, " -> "))
}

// Unwrap возвращает базовую ошибку.
func (e *MalformedChainError) Unwrap() error {
	return ErrMalformedChain
}

// DepthOverflowError — путь, не помещающийся в запись из трёх форм.
type DepthOverflowError struct {
	Path  []string // путь, на котором превышена глубина
	Limit int      // максимальное количество стадий
}

// Error реализует интерфейс error.
func (e *DepthOverflowError) Error() string {
	return fmt.Sprintf("%s: %d stages > %d (%s)", ErrDepthOverflow, len(e.Path), e.Limit, strings.Join(e.Path, " -> "))
}

// Unwrap возвращает базовую ошибку.
func (e *DepthOverflowError) Unwrap() error {
	return ErrDepthOverflow
}
