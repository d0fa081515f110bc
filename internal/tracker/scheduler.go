package tracker

import "time"

// processEpoch anchors the microsecond clock. time.Since carries the
// runtime's monotonic reading, so wall clock adjustments never move it.
var processEpoch = time.Now()

func monotonicMicros() int64 {
	return time.Since(processEpoch).Microseconds()
}

// Scheduler is the fixed-rate gate that paces sample ticks. It never
// sleeps and never spawns anything: the owner calls Tick as often as it
// likes and runs one pipeline pass for every true.
type Scheduler struct {
	intervalMicros int64
	prevMicros     int64
	nowMicros      func() int64
}

// NewScheduler returns a gate at rateHz with its phase anchored at now.
func NewScheduler(rateHz int) *Scheduler {
	s := &Scheduler{
		intervalMicros: 1_000_000 / int64(rateHz),
		nowMicros:      monotonicMicros,
	}
	s.Reset()
	return s
}

// Tick reports whether a sample tick is due and consumes it when it is.
// The phase advances by exactly one interval, never to now: a late caller
// stays on the original grid and catches up one tick per call, so the
// executed tick count tracks elapsed/interval without compounding drift.
func (s *Scheduler) Tick() bool {
	if s.nowMicros()-s.prevMicros < s.intervalMicros {
		return false
	}
	s.prevMicros += s.intervalMicros
	return true
}

// Reset re-anchors the phase at now; the next tick falls due one full
// interval later.
func (s *Scheduler) Reset() {
	s.prevMicros = s.nowMicros()
}

// IntervalMicros returns the tick interval in microseconds.
func (s *Scheduler) IntervalMicros() int64 {
	return s.intervalMicros
}
