package swipe

import (
	"context"
	"sync"
)

const defaultLoopBuffer = 64

// Loop is a single cooperative event loop. Everything that touches a Deck or
// an Engine is posted here.
type Loop struct {
	tasks  chan func()
	closed chan struct{}
	once   sync.Once
}

func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = defaultLoopBuffer
	}
	return &Loop{
		tasks:  make(chan func(), buffer),
		closed: make(chan struct{}),
	}
}

func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.closed:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn and reports false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-l.closed:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.closed:
		return false
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(fn func()) bool {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}

	select {
	case <-done:
		return true
	case <-l.closed:
		return false
	}
}

func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.closed)
	})
}

func (l *Loop) Done() <-chan struct{} {
	return l.closed
}
