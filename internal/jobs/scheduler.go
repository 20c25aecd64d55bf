// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: раз в минуту удаляет устаревшие меню топов.
package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// SweepSchedule — расписание очистки меню.
const SweepSchedule = "@every 1m"

// Sweeper удаляет устаревшие сессии и возвращает, сколько удалено.
type Sweeper interface {
	Sweep() int
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	sessions Sweeper
}

// NewScheduler создаёт планировщик задач в часовом поясе loc.
func NewScheduler(loc *time.Location, sessions Sweeper) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		sessions: sessions,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(SweepSchedule, s.sweepSessions); err != nil {
		return fmt.Errorf("ошибка расписания очистки меню: %w", err)
	}

	s.cron.Start()
	log.WithField("location", s.cron.Location().String()).Info("Планировщик задач запущен")
	return nil
}

func (s *Scheduler) sweepSessions() {
	if removed := s.sessions.Sweep(); removed > 0 {
		log.WithField("removed", removed).Debug("[CRON] Очистка устаревших меню")
	}
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
