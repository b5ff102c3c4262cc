package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер cron-выражений (5 полей или @hourly, @every 6h и т.п.).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule — разобранное расписание выгрузки.
type Schedule struct {
	expr     string
	schedule cron.Schedule
	loc      *time.Location
}

// ParseSchedule разбирает cron-выражение.
// Пустой или невалидный timezone заменяется на UTC.
func ParseSchedule(expr, timezone string) (*Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}

	return &Schedule{expr: expr, schedule: sched, loc: loc}, nil
}

// String возвращает исходное выражение.
func (s *Schedule) String() string {
	return s.expr
}

// Location возвращает timezone расписания.
func (s *Schedule) Location() *time.Location {
	return s.loc
}

// Next вычисляет следующее время запуска после from (в UTC).
func (s *Schedule) Next(from time.Time) time.Time {
	return s.schedule.Next(from.In(s.loc)).UTC()
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
