package batch

import (
	"context"
	"log/slog"
	"time"
)

// Sleeper pauses between batches. Tests swap in a recorder.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper waits on the wall clock and logs the cooldown.
type TimerSleeper struct {
	Logger *slog.Logger
}

func (s TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if s.Logger != nil {
		s.Logger.Info("cooldown", "duration", d.String(), "until", time.Now().Add(d).Format(time.TimeOnly))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
