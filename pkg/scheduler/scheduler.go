package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/redis"
	"github.com/gNutty/vesselradar/pkg/tracing"
)

var ErrSchedulerAlreadyRunning = errors.New("scheduler already running")

const (
	DefaultInterval = time.Hour
	DefaultLockTTL  = 15 * time.Minute
	LockKey         = "scheduler:batch-sync"
)

type Runner interface {
	Run(ctx context.Context) (*models.SyncReport, error)
}

// Locker runs fn only if key could be acquired. redis.Locker satisfies it.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

type Config struct {
	Interval time.Duration
	LockTTL  time.Duration
	// RunOnStart triggers a cycle as soon as the scheduler starts.
	RunOnStart bool
}

// Scheduler runs the batch sync on a fixed interval. Cycles across replicas
// are serialised by a distributed lock; a replica that loses the race skips
// the cycle.
type Scheduler struct {
	runner Runner
	locker Locker
	config Config
	logger ectologger.Logger

	stopCh   chan struct{}
	stoppedC chan struct{}
	cancel   context.CancelFunc
	running  bool
	mu       sync.RWMutex
}

func NewScheduler(runner Runner, locker Locker, config Config, logger ectologger.Logger) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.LockTTL <= 0 {
		config.LockTTL = DefaultLockTTL
	}
	return &Scheduler{
		runner: runner,
		locker: locker,
		config: config,
		logger: logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerAlreadyRunning
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.stoppedC = make(chan struct{})

	// cycles outlive the start request but not Stop
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.logger.WithContext(ctx).Infof("Starting sync scheduler: interval=%s lock_ttl=%s", s.config.Interval, s.config.LockTTL)
	go s.loop(loopCtx, s.stopCh, s.stoppedC)
	return nil
}

// Stop waits for an in-flight cycle to finish. When ctx expires first the
// cycle's context is cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, stoppedC, cancel := s.stopCh, s.stoppedC, s.cancel
	s.mu.Unlock()
	defer cancel()

	s.logger.WithContext(ctx).Info("Stopping sync scheduler...")
	close(stopCh)

	select {
	case <-stoppedC:
		s.logger.WithContext(ctx).Info("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.WithContext(ctx).Warn("Sync scheduler shutdown timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}, stoppedC chan<- struct{}) {
	defer close(stoppedC)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.RunOnStart {
		s.RunCycle(ctx)
	}

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle runs one sync if this replica wins the lock. It reports whether
// the sync ran.
func (s *Scheduler) RunCycle(ctx context.Context) bool {
	ctx, span := tracing.StartSpan(ctx, "Scheduler.RunCycle")
	defer span.End()

	err := s.locker.WithLock(ctx, LockKey, s.config.LockTTL, func(ctx context.Context) error {
		_, err := s.runner.Run(ctx)
		return err
	})
	switch {
	case errors.Is(err, redis.ErrLockNotAcquired):
		s.logger.WithContext(ctx).Debug("Sync cycle skipped, another replica holds the lock")
		return false
	case err != nil:
		s.logger.WithContext(ctx).WithError(err).Error("Sync cycle failed")
		return true
	}
	return true
}
