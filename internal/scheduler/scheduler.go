// Package scheduler runs the pricing pass on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"time"

	"stocky-api/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps a cron runner whose jobs never overlap and survive panics
type Scheduler struct {
	cron    *cron.Cron
	pricing service.PricingService
	timeout time.Duration
	log     *zap.Logger
}

// zapCronLogger adapts zap to cron.Logger
type zapCronLogger struct {
	log *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// New builds a scheduler. timeout bounds a single pricing pass; zero means no bound.
func New(pricing service.PricingService, timeout time.Duration, log *zap.Logger) *Scheduler {
	log = log.Named("scheduler")
	cl := zapCronLogger{log: log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		pricing: pricing,
		timeout: timeout,
		log:     log,
	}
}

// AddPricingJob registers the pricing pass under a standard 5-field cron spec
func (s *Scheduler) AddPricingJob(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runPricing)
	if err != nil {
		return err
	}
	s.log.Info("pricing job scheduled", zap.String("spec", spec))
	return nil
}

func (s *Scheduler) runPricing() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	_, err := s.pricing.RunPricingPass(ctx, time.Now())
	switch {
	case errors.Is(err, service.ErrPricingBusy):
		s.log.Info("pricing pass skipped, a manual run is in progress")
	case err != nil:
		s.log.Error("pricing pass failed", zap.Error(err))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for a running job until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with a job still running")
	}
}
