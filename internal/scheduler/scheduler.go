// Package scheduler fires the notification fan-out tasks on cron
// expressions, for deployments without an external cron runner.
package scheduler

import (
	"context"

	"selapp/internal/service"
	"selapp/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Config struct {
	Enabled bool              `yaml:"enabled"`
	Tasks   map[string]string `yaml:"tasks"` // task name -> cron expression
}

type Scheduler struct {
	cron *cron.Cron
	ns   service.NotificationServiceI
}

func New(cfg Config, ns service.NotificationServiceI) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		ns:   ns,
	}

	for task, expr := range cfg.Tasks {
		task := task
		_, err := s.cron.AddFunc(expr, func() {
			s.run(task)
		})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) run(task string) {
	log := logger.Logger()

	message, err := s.ns.RunTask(context.Background(), task)
	if err != nil {
		log.Error("scheduled task failed", zap.String("task", task), zap.Error(err))
		return
	}

	log.Info("scheduled task complete", zap.String("task", task), zap.String("result", message))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
