package cli

import "time"

// spinWindow is how long before a deadline the pacer stops sleeping and
// busy waits. OS sleeps overshoot by about this much.
const spinWindow = 500 * time.Microsecond

// Pacer holds a loop to a fixed frame period. When the loop falls more
// than one period behind it resyncs to the current time instead of trying
// to catch up.
type Pacer struct {
	period  time.Duration
	next    time.Time
	resyncs int

	now   func() time.Time
	sleep func(time.Duration)
}

// NewPacer returns a pacer for the given frame period.
func NewPacer(period time.Duration) *Pacer {
	return &Pacer{
		period: period,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Wait blocks until the end of the current frame period.
func (p *Pacer) Wait() {
	now := p.now()
	if p.next.IsZero() {
		p.next = now
	}
	p.next = p.next.Add(p.period)

	if now.Sub(p.next) > p.period {
		p.next = now
		p.resyncs++
		return
	}

	if d := p.next.Sub(now) - spinWindow; d > 0 {
		p.sleep(d)
	}
	for p.now().Before(p.next) {
	}
}

// Resyncs returns how many times the pacer dropped its schedule.
func (p *Pacer) Resyncs() int {
	return p.resyncs
}
