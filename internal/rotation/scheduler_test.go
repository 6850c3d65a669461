package rotation

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/bagshot/internal/model"
)

func TestUntilNextUTCMidnight(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			"midmorning",
			time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC),
			16 * time.Hour,
		},
		{
			"one second before midnight",
			time.Date(2025, time.January, 1, 23, 59, 59, 0, time.UTC),
			time.Second,
		},
		{
			"exactly midnight waits a full day",
			time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
			24 * time.Hour,
		},
		{
			"non-utc clock",
			time.Date(2025, time.January, 1, 20, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			// 20:00 EST is 01:00 UTC the next day.
			23 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := untilNextUTCMidnight(tt.now); got != tt.want {
				t.Errorf("untilNextUTCMidnight(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

// notifierFunc adapts a function to the Notifier interface.
type notifierFunc func([]model.TaskAssignment)

func (f notifierFunc) NotifyOverdue(assignments []model.TaskAssignment) { f(assignments) }

func TestSchedulerStartStop(t *testing.T) {
	f := setupEngine(t)
	s := NewScheduler(f.engine, nil, slog.Default())

	s.Start(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	f := setupEngine(t)
	s := NewScheduler(f.engine, nil, slog.Default())
	s.Stop()
}

func TestOverdueLoopSweepsAndNotifies(t *testing.T) {
	f := setupEngine(t)
	tmpl := f.newTemplate(t, "daily", 0, []int64{f.alice})
	if err := f.engine.Generate(tmpl.ID, date(2024, time.December, 28), date(2024, time.December, 30)); err != nil {
		t.Fatalf("generate: %v", err)
	}

	notified := make(chan []model.TaskAssignment, 1)
	s := NewScheduler(f.engine, notifierFunc(func(swept []model.TaskAssignment) {
		select {
		case notified <- swept:
		default:
		}
	}), slog.Default())
	s.overdueInterval = 10 * time.Millisecond

	s.Start(context.Background())
	defer s.Stop()

	select {
	case swept := <-notified:
		if len(swept) != 3 {
			t.Errorf("notified about %d assignments, want 3", len(swept))
		}
		for _, a := range swept {
			if a.Status != model.StatusOverdue {
				t.Errorf("notified assignment status = %s, want overdue", a.Status)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("overdue sweep never notified")
	}
}
