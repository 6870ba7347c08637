package tasks

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Clock is the time source for pacing. Tests swap in a fake that never blocks.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// Pacer spaces remote calls at least interval apart, including before the first one.
//
// It wraps a single-token [rate.Limiter] and drives it from a [Clock] instead of calling [rate.Limiter.Wait].
type Pacer struct {
	clock   Clock
	limiter *rate.Limiter
}

// NewPacer creates a pacer whose first [Pacer.Wait] blocks for a full interval.
func NewPacer(clock Clock, interval time.Duration) *Pacer {
	if clock == nil {
		clock = RealClock()
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	limiter := rate.NewLimiter(limit, 1)
	limiter.ReserveN(clock.Now(), 1)
	return &Pacer{clock: clock, limiter: limiter}
}

// Wait blocks until the next call may be made or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	now := p.clock.Now()
	r := p.limiter.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("pacer: reservation refused")
	}
	if err := p.clock.Sleep(ctx, r.DelayFrom(now)); err != nil {
		r.CancelAt(p.clock.Now())
		return err
	}
	return nil
}
