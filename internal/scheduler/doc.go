// Package scheduler запускает периодическую выгрузку PokeAPI по cron-расписанию.
//
// Структура:
//   - scheduler.go — цикл Run и одиночный запуск Tick
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched, err := scheduler.ParseSchedule("0 3 * * *", "Europe/Moscow")
//	if err != nil {
//	    return err
//	}
//
//	s, err := scheduler.New(scheduler.Config{
//	    Schedule:   sched,
//	    Job:        func(ctx context.Context) error { _, err := ext.Run(ctx); return err },
//	    RunOnStart: true,
//	    Logger:     logger,
//	})
//
//	// Блокируется до отмены ctx
//	err = s.Run(ctx)
package scheduler
