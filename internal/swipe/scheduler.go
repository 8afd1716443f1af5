package swipe

import "time"

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Implementations used by an Engine must deliver
// f on the goroutine that owns the engine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// LoopScheduler fires timers through a Loop so callbacks never race with
// gesture handling.
type LoopScheduler struct {
	Loop *Loop
}

func (s LoopScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() {
		s.Loop.Post(f)
	})
}
