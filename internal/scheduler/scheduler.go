package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrNoJob — Scheduler создан без задачи.
var ErrNoJob = errors.New("scheduler job is nil")

// Job — периодическая задача.
type Job func(ctx context.Context) error

// Scheduler запускает Job по cron-расписанию.
//
// Запуски последовательны: следующий отсчитывается от окончания
// предыдущего, пропущенные за время работы не догоняются.
type Scheduler struct {
	schedule   *Schedule
	job        Job
	runOnStart bool
	logger     *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	// Schedule — расписание запусков.
	Schedule *Schedule

	// Job — выполняемая задача.
	Job Job

	// RunOnStart — выполнить Job сразу при старте, не дожидаясь расписания.
	RunOnStart bool

	Logger *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Job == nil {
		return nil, ErrNoJob
	}
	if cfg.Schedule == nil {
		return nil, errors.New("scheduler schedule is nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		schedule:   cfg.Schedule,
		job:        cfg.Job,
		runOnStart: cfg.RunOnStart,
		logger:     logger,
		now:        time.Now,
		after:      time.After,
	}, nil
}

// Run выполняет Job по расписанию. Блокируется до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"cron", s.schedule.String(),
		"timezone", s.schedule.Location().String(),
	)

	if s.runOnStart {
		s.Tick(ctx)
	}

	for ctx.Err() == nil {
		next := s.schedule.Next(s.now())
		s.logger.Debug("next run scheduled", "at", next)

		select {
		case <-ctx.Done():
			continue
		case <-s.after(time.Until(next)):
		}

		s.Tick(ctx)
	}

	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

// Tick выполняет Job один раз.
// Ошибка логируется и не останавливает расписание.
func (s *Scheduler) Tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := s.now()
	if err := s.job(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("scheduled run failed", "error", err, "duration", time.Since(start))
		return
	}

	s.logger.Info("scheduled run completed", "duration", time.Since(start))
}
