// Package pacing provides ports.Pacer policies for rate-limited upstreams.
package pacing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Interval allows one call immediately and then at most one call per interval.
// It is safe for concurrent use; concurrent waiters are served one per interval.
type Interval struct {
	limiter *rate.Limiter
}

func NewInterval(every time.Duration) *Interval {
	if every <= 0 {
		return &Interval{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Interval{limiter: rate.NewLimiter(rate.Every(every), 1)}
}

// Wait blocks until the next slot. When that slot falls after the context
// deadline it fails immediately with an error matching context.DeadlineExceeded.
func (p *Interval) Wait(ctx context.Context) error {
	err := p.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("pacing: %w: %v", context.DeadlineExceeded, err)
	}
	return fmt.Errorf("pacing: %w", err)
}

// None never delays. Intended for tests and cached lookups.
type None struct{}

func (None) Wait(ctx context.Context) error {
	return ctx.Err()
}
