package domain

import (
	"errors"
	"fmt"
)

// MaxStages — количество стадий в EvolutionRecord.
const MaxStages = 3

// ErrRecordGap — третья форма задана без второй.
var ErrRecordGap = errors.New("third form present without second form")

// EvolutionRecord — строка таблицы evolutions.
//
// Один полный путь эволюции от базовой формы до терминальной.
// nil в SecondForm/ThirdForm соответствует NULL в колонке.
type EvolutionRecord struct {
	FirstForm  string  `json:"first_form"`
	SecondForm *string `json:"second_form"`
	ThirdForm  *string `json:"third_form"`
}

// NewEvolutionRecord собирает запись из пути длиной 2 или 3.
func NewEvolutionRecord(path []string) (EvolutionRecord, error) {
	switch len(path) {
	case 2:
		second := path[1]
		return EvolutionRecord{FirstForm: path[0], SecondForm: &second}, nil
	case 3:
		second, third := path[1], path[2]
		return EvolutionRecord{FirstForm: path[0], SecondForm: &second, ThirdForm: &third}, nil
	default:
		return EvolutionRecord{}, fmt.Errorf("record needs 2 or %d stages, got %d", MaxStages, len(path))
	}
}

// Validate проверяет инвариант записи: без пропусков между формами.
func (r EvolutionRecord) Validate() error {
	if r.FirstForm == "" {
		return errors.New("first form is empty")
	}
	if r.ThirdForm != nil && r.SecondForm == nil {
		return ErrRecordGap
	}
	return nil
}

// Stages возвращает заполненные формы по порядку.
func (r EvolutionRecord) Stages() []string {
	stages := []string{r.FirstForm}
	if r.SecondForm != nil {
		stages = append(stages, *r.SecondForm)
	}
	if r.ThirdForm != nil {
		stages = append(stages, *r.ThirdForm)
	}
	return stages
}

// Equal сравнивает записи по значениям форм.
func (r EvolutionRecord) Equal(other EvolutionRecord) bool {
	return r.FirstForm == other.FirstForm &&
		equalForm(r.SecondForm, other.SecondForm) &&
		equalForm(r.ThirdForm, other.ThirdForm)
}

// String возвращает запись в виде "a -> b -> c".
func (r EvolutionRecord) String() string {
	s := r.FirstForm
	for _, stage := range r.Stages()[1:] {
		s += " -> " + stage
	}
	return s
}

func equalForm(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
