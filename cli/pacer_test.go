package cli

import (
	"testing"
	"time"
)

// fakeClock advances by step on every read so spin loops terminate.
type fakeClock struct {
	t      time.Time
	step   time.Duration
	sleeps []time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func (c *fakeClock) sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
}

func newTestPacer(period time.Duration) (*Pacer, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0), step: 10 * time.Microsecond}
	p := NewPacer(period)
	p.now = clock.now
	p.sleep = clock.sleep
	return p, clock
}

func TestPacer_SleepThenSpin(t *testing.T) {
	p, clock := newTestPacer(16 * time.Millisecond)

	p.Wait()

	if len(clock.sleeps) != 1 {
		t.Fatalf("expected 1 sleep, got %d", len(clock.sleeps))
	}
	if clock.sleeps[0] != 16*time.Millisecond-spinWindow {
		t.Errorf("sleep: expected %v, got %v", 16*time.Millisecond-spinWindow, clock.sleeps[0])
	}
	if clock.t.Before(p.next) {
		t.Errorf("returned %v before deadline", p.next.Sub(clock.t))
	}
	if late := clock.t.Sub(p.next); late > 2*clock.step {
		t.Errorf("returned %v after deadline", late)
	}
}

func TestPacer_HoldsCadence(t *testing.T) {
	p, clock := newTestPacer(16 * time.Millisecond)
	start := clock.t

	for i := 0; i < 100; i++ {
		clock.t = clock.t.Add(5 * time.Millisecond) // frame work
		p.Wait()
	}

	elapsed := clock.t.Sub(start)
	// The first frame's work lands before the schedule starts
	if elapsed < 1600*time.Millisecond || elapsed > 1610*time.Millisecond {
		t.Errorf("100 frames took %v, expected ~1.6s", elapsed)
	}
	if p.Resyncs() != 0 {
		t.Errorf("unexpected resyncs: %d", p.Resyncs())
	}
}

func TestPacer_SmallOverrunCatchesUp(t *testing.T) {
	p, clock := newTestPacer(16 * time.Millisecond)
	p.Wait()

	clock.t = clock.t.Add(20 * time.Millisecond)
	p.Wait()
	if len(clock.sleeps) != 1 {
		t.Errorf("late frame should not sleep, sleeps=%v", clock.sleeps)
	}

	p.Wait()
	if len(clock.sleeps) != 2 {
		t.Fatalf("expected a catch-up sleep, sleeps=%v", clock.sleeps)
	}
	if clock.sleeps[1] >= 12*time.Millisecond {
		t.Errorf("catch-up sleep should be shortened, got %v", clock.sleeps[1])
	}
	if p.Resyncs() != 0 {
		t.Errorf("unexpected resyncs: %d", p.Resyncs())
	}
}

func TestPacer_Resync(t *testing.T) {
	p, clock := newTestPacer(16 * time.Millisecond)
	p.Wait()

	clock.t = clock.t.Add(100 * time.Millisecond)
	p.Wait()

	if p.Resyncs() != 1 {
		t.Errorf("expected 1 resync, got %d", p.Resyncs())
	}
	if len(clock.sleeps) != 1 {
		t.Errorf("resync should not sleep, sleeps=%v", clock.sleeps)
	}

	// The next frame gets a full period again
	p.Wait()
	if len(clock.sleeps) != 2 || clock.sleeps[1] < 15*time.Millisecond {
		t.Errorf("expected a full sleep after resync, sleeps=%v", clock.sleeps)
	}
}
