package tracker

import "testing"

type fakeClock struct {
	micros int64
}

func (c *fakeClock) now() int64 { return c.micros }

func (c *fakeClock) advance(us int64) { c.micros += us }

func newTestScheduler(rateHz int, c *fakeClock) *Scheduler {
	s := NewScheduler(rateHz)
	s.nowMicros = c.now
	s.Reset()
	return s
}

func TestSchedulerInterval(t *testing.T) {
	if got := NewScheduler(25).IntervalMicros(); got != 40000 {
		t.Fatalf("IntervalMicros = %d, want 40000", got)
	}
	if got := NewScheduler(100).IntervalMicros(); got != 10000 {
		t.Fatalf("IntervalMicros = %d, want 10000", got)
	}
}

func TestSchedulerGateClosedInsideInterval(t *testing.T) {
	c := &fakeClock{micros: 7123}
	s := newTestScheduler(25, c)

	for i := 0; i < 100; i++ {
		c.advance(300)
		if s.Tick() {
			t.Fatalf("tick fired %d µs into a 40000 µs interval", c.micros-7123)
		}
	}
}

func TestSchedulerFiresOnExactBoundary(t *testing.T) {
	c := &fakeClock{}
	s := newTestScheduler(25, c)

	c.advance(39999)
	if s.Tick() {
		t.Fatal("tick fired one µs early")
	}
	c.advance(1)
	if !s.Tick() {
		t.Fatal("tick did not fire at exactly one interval")
	}
	if s.Tick() {
		t.Fatal("second tick fired inside the same interval")
	}
}

func TestSchedulerCatchUpOneTickPerCall(t *testing.T) {
	c := &fakeClock{}
	s := newTestScheduler(25, c)

	// Stall five intervals, then poll rapidly: each call fires exactly one
	// backlog tick.
	c.advance(5 * 40000)
	for i := 0; i < 5; i++ {
		if !s.Tick() {
			t.Fatalf("backlog tick %d did not fire", i)
		}
	}
	if s.Tick() {
		t.Fatal("extra tick after the backlog drained")
	}

	// The phase stays on the original grid.
	c.advance(39999)
	if s.Tick() {
		t.Fatal("tick fired before the next grid boundary")
	}
	c.advance(1)
	if !s.Tick() {
		t.Fatal("tick missing at the next grid boundary")
	}
}

func TestSchedulerNoDriftUnderJitter(t *testing.T) {
	c := &fakeClock{}
	s := newTestScheduler(25, c)

	// Jittery polling with gaps both shorter and longer than the
	// interval. After a final drain the executed tick count must equal
	// floor(elapsed/interval) exactly.
	gaps := []int64{100, 900, 41000, 38000, 7000, 63000, 100, 100, 39900, 45000}
	ticks := int64(0)
	for i := 0; i < 5000; i++ {
		c.advance(gaps[i%len(gaps)])
		if s.Tick() {
			ticks++
		}
	}
	for s.Tick() {
		ticks++
	}
	if want := c.micros / 40000; ticks != want {
		t.Fatalf("ticks = %d over %d µs, want exactly %d", ticks, c.micros, want)
	}
}

func TestSchedulerReset(t *testing.T) {
	c := &fakeClock{}
	s := newTestScheduler(25, c)

	c.advance(100000)
	s.Reset()
	if s.Tick() {
		t.Fatal("tick fired immediately after Reset")
	}
	c.advance(39999)
	if s.Tick() {
		t.Fatal("tick fired less than one interval after Reset")
	}
	c.advance(1)
	if !s.Tick() {
		t.Fatal("tick missing one interval after Reset")
	}
}
