// Package payment settles checkout payments. Only a simulated settler exists: every payment succeeds.
package payment

import (
	"context"
	"log/slog"
	"time"
)

type Settler interface {
	Settle(ctx context.Context, amount int64) error
}

// Simulated waits a fixed delay and then always succeeds.
// It returns ctx.Err() if ctx ends first.
type Simulated struct {
	Delay time.Duration
}

func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{Delay: delay}
}

func (s *Simulated) Settle(ctx context.Context, amount int64) error {
	slog.Debug("Settling payment", "amount", amount, "delay", s.Delay)

	if s.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
