// Package scheduler repeats a job on a cron schedule until its context ends.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var parser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate reports whether spec is a cron expression with a seconds field
// (or a descriptor such as "@daily").
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

type Scheduler struct {
	cron   *cron.Cron
	spec   string
	logger *zap.Logger
}

func New(spec string, loc *time.Location, logger *zap.Logger) (*Scheduler, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:   spec,
		logger: logger,
	}, nil
}

// Run executes job once immediately, then on every tick until ctx is done.
// Ticks that fire while the previous run is still going are skipped.
// Run returns after the last started job has finished.
func (s *Scheduler) Run(ctx context.Context, job func(context.Context)) error {
	if _, err := s.cron.AddFunc(s.spec, func() { job(ctx) }); err != nil {
		return fmt.Errorf("register job: %w", err)
	}

	job(ctx)
	if ctx.Err() != nil {
		return nil
	}

	s.cron.Start()
	if entries := s.cron.Entries(); len(entries) > 0 {
		s.logger.Info("scheduler started", zap.String("schedule", s.spec), zap.Time("next", entries[0].Next))
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
