package catalog

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler drives the recurring auto-refresh. It watches the catalog's
// events and swaps its timer atomically: the old one is cleared before a
// new one is armed, so two can never run at once. An interval of zero
// disables auto-refresh.
type Scheduler struct {
	cat *Catalog

	// Duration of one interval unit. A minute outside of tests.
	tick time.Duration
}

func NewScheduler(cat *Catalog) *Scheduler {
	return &Scheduler{cat: cat, tick: time.Minute}
}

// Run blocks until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	events, cancel := s.cat.Subscribe()
	defer cancel()

	var (
		current = s.cat.Preferences().AutoRefreshMinutes
		timer   *time.Timer
		fire    <-chan time.Time
	)

	disarm := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer, fire = nil, nil
	}
	arm := func(minutes int) {
		disarm()
		current = minutes
		if minutes > 0 {
			timer = time.NewTimer(time.Duration(minutes) * s.tick)
			fire = timer.C
		}
	}

	arm(current)

	for {
		select {
		case <-ctx.Done():
			disarm()
			return nil

		case <-fire:
			slog.Info("auto refresh", "interval_minutes", current)
			s.cat.Refresh(ctx)
			// Re-arm with whatever the interval is now.
			arm(s.cat.Preferences().AutoRefreshMinutes)

		case <-events:
			// Subscriber channels are lossy under pressure, so any event is
			// only a wake-up: re-read the interval rather than trusting that
			// a preference change arrives as its own notification.
			next := s.cat.Preferences().AutoRefreshMinutes
			if next != current {
				arm(next)
			}
		}
	}
}
