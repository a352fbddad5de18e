package fetch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pager spaces consecutive requests of one extraction call by at least the
// configured delay. The first Wait returns immediately. It bounds our own
// request rate; it does not promise anything about server-side throttling.
type Pager struct {
	limiter *rate.Limiter
}

// NewPager returns a pager with the given minimum spacing. A zero or
// negative delay disables spacing.
func NewPager(delay time.Duration) *Pager {
	if delay <= 0 {
		return &Pager{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pager{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next request may be issued or ctx is done.
func (p *Pager) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
