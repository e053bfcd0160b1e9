package experiment

import "time"

// Stopwatch measures elapsed trial time. Readings are synchronous; time.Now
// carries a monotonic clock so wall-clock jumps do not skew durations.
type Stopwatch struct {
	now     func() time.Time
	started time.Time
	running bool
}

// NewStopwatch returns a stopped stopwatch. A nil now uses time.Now.
func NewStopwatch(now func() time.Time) *Stopwatch {
	if now == nil {
		now = time.Now
	}
	return &Stopwatch{now: now}
}

// Start begins timing from now.
func (s *Stopwatch) Start() {
	s.started = s.now()
	s.running = true
}

// Restart returns the time since the last start and starts again.
func (s *Stopwatch) Restart() time.Duration {
	now := s.now()
	elapsed := now.Sub(s.started)
	s.started = now
	s.running = true
	return elapsed
}

// Elapsed returns the time since the last start, or zero when stopped.
func (s *Stopwatch) Elapsed() time.Duration {
	if !s.running {
		return 0
	}
	return s.now().Sub(s.started)
}

// Stop halts timing.
func (s *Stopwatch) Stop() {
	s.running = false
}

// Running reports whether the stopwatch is timing.
func (s *Stopwatch) Running() bool {
	return s.running
}
