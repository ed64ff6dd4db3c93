package geocode

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives a Pacer without wall-clock delay. Sleeps advance the
// clock and are recorded.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) attach(p *Pacer) {
	p.now = func() time.Time { return c.now }
	p.sleep = func(_ context.Context, d time.Duration) error {
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
		return nil
	}
}

func TestPacerFirstWaitDoesNotBlock(t *testing.T) {
	p := NewPacer(1100 * time.Millisecond)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.attach(p)

	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none on first wait", clock.sleeps)
	}
}

func TestPacerEnforcesInterval(t *testing.T) {
	p := NewPacer(1100 * time.Millisecond)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.attach(p)

	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() #%d error = %v", i, err)
		}
	}

	if len(clock.sleeps) != 2 {
		t.Fatalf("sleeps = %d, want 2 for 3 waits", len(clock.sleeps))
	}
	for i, d := range clock.sleeps {
		if d != 1100*time.Millisecond {
			t.Errorf("sleep #%d = %s, want 1.1s", i, d)
		}
	}
}

func TestPacerCreditsElapsedTime(t *testing.T) {
	p := NewPacer(1100 * time.Millisecond)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.attach(p)

	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	// 600ms of work happened between rows; only the remainder is slept.
	clock.now = clock.now.Add(600 * time.Millisecond)
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if len(clock.sleeps) != 1 || clock.sleeps[0] != 500*time.Millisecond {
		t.Errorf("sleeps = %v, want [500ms]", clock.sleeps)
	}
}

func TestPacerZeroIntervalDisabled(t *testing.T) {
	p := NewPacer(0)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.attach(p)

	for i := 0; i < 5; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none with pacing disabled", clock.sleeps)
	}
}

func TestPacerCancelledContext(t *testing.T) {
	p := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("Wait() should return the context error after cancellation")
	}
}
