package clock

import (
	"time"

	"go.uber.org/atomic"
)

type system struct{}

func System() system {
	return system{}
}

func (system) Now() time.Time {
	return time.Now()
}

// Stepping is a deterministic clock: the n-th call to Now returns
// start + n*step. It is safe for concurrent use.
type Stepping struct {
	start time.Time
	step  time.Duration
	calls *atomic.Int64
}

func NewStepping(start time.Time, step time.Duration) *Stepping {
	return &Stepping{
		start: start,
		step:  step,
		calls: atomic.NewInt64(0),
	}
}

func (s *Stepping) Now() time.Time {
	n := s.calls.Inc() - 1
	return s.start.Add(time.Duration(n) * s.step)
}

func (s *Stepping) Calls() int64 {
	return s.calls.Load()
}
