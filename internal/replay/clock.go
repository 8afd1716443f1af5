package replay

import (
	"sort"
	"time"

	"github.com/jwong2529/humor-study/internal/swipe"
)

// virtualScheduler fires timers when Advance moves its clock past them.
type virtualScheduler struct {
	now    time.Duration
	seq    int
	timers []*virtualTimer
}

type virtualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *virtualTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (s *virtualScheduler) AfterFunc(d time.Duration, f func()) swipe.Timer {
	s.seq++
	t := &virtualTimer{at: s.now + d, seq: s.seq, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *virtualScheduler) Advance(d time.Duration) {
	s.now += d
	for {
		due := s.popDue()
		if due == nil {
			return
		}
		due.stopped = true
		due.fn()
	}
}

func (s *virtualScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (s *virtualScheduler) popDue() *virtualTimer {
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at == s.timers[j].at {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].at < s.timers[j].at
	})

	kept := s.timers[:0]
	var due *virtualTimer
	for _, t := range s.timers {
		if t.stopped {
			continue
		}
		if due == nil && t.at <= s.now {
			due = t
			continue
		}
		kept = append(kept, t)
	}
	s.timers = kept
	return due
}
