package internal

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clock abstracts time so the limiter can be driven deterministically in tests
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RealClock returns the wall clock
func RealClock() Clock { return realClock{} }

// RateLimiter bounds outbound calls with a sliding window: at most burst
// acquisitions fall inside any window-long interval. A minimum spacing between
// consecutive acquisitions is enforced on top of the window.
//
// One limiter is shared by every caller of an upstream client.
type RateLimiter struct {
	mu      sync.Mutex
	burst   int
	window  time.Duration
	stamps  []time.Time
	spacing *rate.Limiter
	clock   Clock
}

// NewRateLimiter creates a limiter. A zero minSpacing disables spacing.
func NewRateLimiter(burst int, window, minSpacing time.Duration, clock Clock) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if clock == nil {
		clock = RealClock()
	}

	l := &RateLimiter{
		burst:  burst,
		window: window,
		stamps: make([]time.Time, 0, burst),
		clock:  clock,
	}
	if minSpacing > 0 {
		l.spacing = rate.NewLimiter(rate.Every(minSpacing), 1)
	}
	return l
}

// Acquire blocks until a request slot is available or ctx is done.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	if err := l.waitSpacing(ctx); err != nil {
		return err
	}

	for {
		l.mu.Lock()
		now := l.clock.Now()
		l.prune(now)
		if len(l.stamps) < l.burst {
			// check and record under one lock; nothing may block in between
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.stamps[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// InWindow returns the number of acquisitions inside the current window
func (l *RateLimiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.clock.Now())
	return len(l.stamps)
}

func (l *RateLimiter) waitSpacing(ctx context.Context) error {
	if l.spacing == nil {
		return nil
	}

	now := l.clock.Now()
	reservation := l.spacing.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	if err := l.clock.Sleep(ctx, delay); err != nil {
		reservation.CancelAt(l.clock.Now())
		return err
	}
	return nil
}

// prune drops timestamps that have left the window. Callers hold mu.
func (l *RateLimiter) prune(now time.Time) {
	cut := 0
	for cut < len(l.stamps) && now.Sub(l.stamps[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[cut:]...)
	}
}
