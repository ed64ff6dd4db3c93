package geocode

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum interval between successive operations. The
// provider importer calls Wait between rows so external geocode lookups
// never exceed the upstream rate policy, whatever mix of cache hits and
// misses the batch produces.
//
// The clock and sleeper are injectable so tests run without wall-clock
// delay.
type Pacer struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer with the given minimum interval. A zero or
// negative interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous Wait returned a slot. The first call never blocks. Returns the
// context's error if it is cancelled while waiting.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return nil
	}

	p.mu.Lock()
	now := p.now()
	var delay time.Duration
	if !p.last.IsZero() {
		if elapsed := now.Sub(p.last); elapsed < p.interval {
			delay = p.interval - elapsed
		}
	}
	p.last = now.Add(delay)
	p.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	return p.sleep(ctx, delay)
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
