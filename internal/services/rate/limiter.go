package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// Window is one fixed counting window. A zero Limit disables it.
type Window struct {
	Name  string
	Size  time.Duration
	Limit int
}

// Limiter throttles vote submissions per profile across several windows.
type Limiter struct {
	store   WindowStore
	windows []Window
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	return NewWindowLimiter(store,
		Window{Name: "min", Size: time.Minute, Limit: perMinute},
		Window{Name: "10s", Size: 10 * time.Second, Limit: per10Sec},
	)
}

func NewWindowLimiter(store WindowStore, windows ...Window) *Limiter {
	active := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.Limit > 0 && w.Size > 0 {
			active = append(active, w)
		}
	}
	return &Limiter{store: store, windows: active}
}

// AllowVote counts one vote and reports how many seconds to wait when any
// window is exceeded.
func (l *Limiter) AllowVote(ctx context.Context, profileID uuid.UUID) (int64, bool, error) {
	if profileID == uuid.Nil {
		return 0, false, fmt.Errorf("invalid profile id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfterSec int64
	for _, w := range l.windows {
		count, ttl, err := l.store.IncrementWindow(ctx, voteKey(w, profileID), w.Size)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.Limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfterVote reads the windows without counting.
func (l *Limiter) RetryAfterVote(ctx context.Context, profileID uuid.UUID) (int64, error) {
	if profileID == uuid.Nil {
		return 0, fmt.Errorf("invalid profile id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfterSec int64
	for _, w := range l.windows {
		count, ttl, err := l.store.WindowState(ctx, voteKey(w, profileID))
		if err != nil {
			return 0, err
		}
		if count >= int64(w.Limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	return retryAfterSec, nil
}

func voteKey(w Window, profileID uuid.UUID) string {
	return "rate:votes:" + w.Name + ":" + profileID.String()
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return max(sec, 1)
}
