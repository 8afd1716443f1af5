package swipe

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/domain/model"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) Pointer {
	return Pointer{At: testEpoch.Add(time.Duration(ms) * time.Millisecond)}
}

func pt(x float64, ms int) Pointer {
	p := at(ms)
	p.X = x
	return p
}

type fakeTimer struct {
	sched   *fakeScheduler
	due     time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler fires callbacks synchronously from Advance.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{sched: s, due: s.now + d, seq: s.seq, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.fired && !t.stopped && t.due <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].seq < due[j].seq
		}
		return due[i].due < due[j].due
	})
	for _, t := range due {
		t.fn()
	}
}

func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

type submittedVote struct {
	ItemID  string
	Value   enums.VoteValue
	Outcome Outcome
	Carried bool
}

type recordingVoter struct {
	votes chan submittedVote
	err   error
}

func newRecordingVoter(err error) *recordingVoter {
	return &recordingVoter{votes: make(chan submittedVote, 16), err: err}
}

func (v *recordingVoter) SubmitVote(ctx context.Context, itemID string, value enums.VoteValue) error {
	outcome, ok := OutcomeFromContext(ctx)
	v.votes <- submittedVote{ItemID: itemID, Value: value, Outcome: outcome, Carried: ok}
	return v.err
}

func (v *recordingVoter) next(timeout time.Duration) (submittedVote, bool) {
	select {
	case vote := <-v.votes:
		return vote, true
	case <-time.After(timeout):
		return submittedVote{}, false
	}
}

func (v *recordingVoter) none(wait time.Duration) bool {
	select {
	case <-v.votes:
		return false
	case <-time.After(wait):
		return true
	}
}

func testItems(ids ...string) []model.FeedItem {
	items := make([]model.FeedItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, model.FeedItem{ID: id, ImageURL: "https://img.example/" + id + ".jpg", Content: "caption " + id})
	}
	return items
}

func settle(e *Engine) {
	for i := 0; i < 2000 && e.Animating(); i++ {
		e.Step(16 * time.Millisecond)
	}
}
