package rotation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/bagshot/internal/frequency"
	"github.com/dukerupert/bagshot/internal/metrics"
	"github.com/dukerupert/bagshot/internal/model"
)

// Notifier receives assignments freshly transitioned to overdue. The web
// push service implements it; nil disables notifications.
type Notifier interface {
	NotifyOverdue(assignments []model.TaskAssignment)
}

// Scheduler drives the two periodic workers: a daily generation sweep at UTC
// midnight and an hourly overdue sweep. Worker failures are logged and
// retried on a fixed backoff, never surfaced to callers.
type Scheduler struct {
	mu       sync.RWMutex
	engine   *Engine
	notifier Notifier
	logger   *slog.Logger

	generationBackoff time.Duration
	overdueInterval   time.Duration
	overdueBackoff    time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	now    func() time.Time
}

// NewScheduler creates a scheduler over the engine. notifier may be nil.
func NewScheduler(engine *Engine, notifier Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:            engine,
		notifier:          notifier,
		logger:            logger,
		generationBackoff: time.Hour,
		overdueInterval:   time.Hour,
		overdueBackoff:    20 * time.Minute,
		now:               time.Now,
	}
}

// Start launches both worker loops.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.generationLoop(ctx)
		}()
		go func() {
			defer wg.Done()
			s.overdueLoop(ctx)
		}()
		wg.Wait()
	}()
}

// Stop cancels both loops and waits for them to finish.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) generationLoop(ctx context.Context) {
	for {
		delay := untilNextUTCMidnight(s.now())
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		s.runGeneration(ctx)
	}
}

func (s *Scheduler) runGeneration(ctx context.Context) {
	err := retry.Do(ctx, retry.NewConstant(s.generationBackoff), func(ctx context.Context) error {
		if err := s.engine.RunDailyGeneration(ctx); err != nil {
			s.logger.Error("daily generation failed, backing off", "error", err, "backoff", s.generationBackoff)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		s.logger.Error("daily generation gave up", "error", err)
	}
}

func (s *Scheduler) overdueLoop(ctx context.Context) {
	ticker := time.NewTicker(s.overdueInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOverdueSweep(ctx)
		}
	}
}

func (s *Scheduler) runOverdueSweep(ctx context.Context) {
	err := retry.Do(ctx, retry.NewConstant(s.overdueBackoff), func(ctx context.Context) error {
		swept, err := s.engine.RunOverdueSweep(ctx)
		if err != nil {
			metrics.SweepFailures.Inc()
			s.logger.Error("overdue sweep failed, backing off", "error", err, "backoff", s.overdueBackoff)
			return retry.RetryableError(err)
		}
		if len(swept) > 0 {
			s.logger.Info("assignments marked overdue", "count", len(swept))
			if s.notifier != nil {
				s.notifier.NotifyOverdue(swept)
			}
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		s.logger.Error("overdue sweep gave up", "error", err)
	}
}

// untilNextUTCMidnight returns the delay until the next UTC day boundary.
func untilNextUTCMidnight(now time.Time) time.Duration {
	next := frequency.DateOf(now).AddDate(0, 0, 1)
	return next.Sub(now.UTC())
}
