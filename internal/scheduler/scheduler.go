package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// JobFunc is the signature for the periodic refresh job.
type JobFunc func(ctx context.Context) error

// Scheduler wraps gocron v2 around the treasury refresh loop.
type Scheduler struct {
	inner          gocron.Scheduler
	job            gocron.Job
	interval       time.Duration
	runImmediately bool
	logger         *zap.Logger
}

// NewScheduler creates a scheduler running jobFunc every interval. When
// runImmediately is set, Start fires the job once before the first tick so
// a fresh snapshot exists as soon as the server accepts traffic.
func NewScheduler(ctx context.Context, interval time.Duration, runImmediately bool, jobFunc JobFunc, logger *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	logger = logger.Named("Scheduler")

	inner, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(&zapGocronLogger{logger: logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	job, err := inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := jobFunc(ctx); err != nil {
				logger.Error("Scheduled refresh failed", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh job: %w", err)
	}

	return &Scheduler{
		inner:          inner,
		job:            job,
		interval:       interval,
		runImmediately: runImmediately,
		logger:         logger,
	}, nil
}

// Start begins periodic execution.
func (s *Scheduler) Start() error {
	if s.runImmediately {
		if err := s.job.RunNow(); err != nil {
			// A failed warm-up run is not fatal; the ticks continue.
			s.logger.Error("Immediate refresh failed", zap.Error(err))
		}
	}

	s.inner.Start()

	if nextRun, err := s.job.NextRun(); err == nil {
		s.logger.Info("Scheduler started",
			zap.Duration("interval", s.interval),
			zap.Time("nextRun", nextRun))
	} else {
		s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
	}
	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.inner.Shutdown()
}

// NextRun returns the next scheduled run time.
func (s *Scheduler) NextRun() (time.Time, error) {
	return s.job.NextRun()
}

// LastRun returns the time of the last completed run.
func (s *Scheduler) LastRun() (time.Time, error) {
	return s.job.LastRun()
}

// zapGocronLogger adapts zap to the gocron.Logger interface.
type zapGocronLogger struct {
	logger *zap.Logger
}

func (l *zapGocronLogger) Debug(msg string, args ...any) { l.logger.Sugar().Debugw(msg, args...) }
func (l *zapGocronLogger) Info(msg string, args ...any)  { l.logger.Sugar().Infow(msg, args...) }
func (l *zapGocronLogger) Warn(msg string, args ...any)  { l.logger.Sugar().Warnw(msg, args...) }
func (l *zapGocronLogger) Error(msg string, args ...any) { l.logger.Sugar().Errorw(msg, args...) }
