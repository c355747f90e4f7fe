package worker

import (
	"context"
	"fmt"

	"loan-marketplace/internal/infrastructure/logging"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	job      *PortfolioJob
	schedule string
	log      *logging.Logger
}

func NewScheduler(job *PortfolioJob, schedule string) *Scheduler {
	log := logging.L().Named("worker")
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{log.Sugar()}),
		cron.SkipIfStillRunning(cronLogger{log.Sugar()}),
	))
	return &Scheduler{cron: c, job: job, schedule: schedule, log: log}
}

// Start registers the portfolio job, refreshes the gauges once and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.job.Run); err != nil {
		return fmt.Errorf("schedule portfolio job %q: %w", s.schedule, err)
	}
	s.log.Info("scheduled portfolio job", zap.String("schedule", s.schedule))
	s.job.Run()
	s.cron.Start()
	return nil
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
