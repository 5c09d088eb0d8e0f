// Package ratelimit spaces outbound requests to a remote site.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter guarantees a minimum spacing between permitted requests across
// all callers. Callers queue on an exclusive section while they wait, so two
// permitted requests are never observed closer together than the spacing.
type Limiter struct {
	mu      sync.Mutex
	lim     *rate.Limiter
	spacing time.Duration
	last    time.Time
}

// New creates a limiter with the given default spacing.
func New(spacing time.Duration) *Limiter {
	return &Limiter{
		lim:     rate.NewLimiter(every(spacing), 1),
		spacing: spacing,
	}
}

// Wait blocks until a request may proceed using the default spacing.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	spacing := l.spacing
	l.mu.Unlock()
	return l.Enforce(ctx, spacing)
}

// Enforce blocks until at least spacing has elapsed since the previously
// permitted request. A non-positive spacing only serializes callers.
func (l *Limiter) Enforce(ctx context.Context, spacing time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if spacing != l.spacing {
		l.lim = rate.NewLimiter(every(spacing), 1)
		if !l.last.IsZero() {
			// The new spacing is measured from the last permit, not from now.
			l.lim.ReserveN(l.last, 1)
		}
		l.spacing = spacing
	}

	if spacing > 0 {
		if err := l.lim.Wait(ctx); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	l.last = time.Now()
	return nil
}

// Last returns the time of the most recently permitted request.
func (l *Limiter) Last() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

func every(spacing time.Duration) rate.Limit {
	if spacing <= 0 {
		return rate.Inf
	}
	return rate.Every(spacing)
}
