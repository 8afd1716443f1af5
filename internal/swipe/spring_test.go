package swipe

import (
	"math"
	"testing"
	"time"
)

func TestAnimationSettlesOnTarget(t *testing.T) {
	a := NewAnimation(Transform{X: 150, Rot: 1.5, Scale: 1.05}, Rest, DefaultSpring())

	prev := math.Inf(1)
	for i := 0; i < 5000 && !a.Done(); i++ {
		cur := a.Step(16 * time.Millisecond)
		if cur.X > prev+1e-9 {
			t.Fatalf("overdamped spring must not overshoot back: %v after %v", cur.X, prev)
		}
		prev = cur.X
	}
	if !a.Done() {
		t.Fatalf("animation did not settle")
	}
	if a.Current() != Rest {
		t.Fatalf("unexpected resting transform: %+v", a.Current())
	}
}

func TestAnimationIndependentOfFrameSlicing(t *testing.T) {
	from := Transform{X: 0, Scale: 1.05}
	to := Transform{X: 1480, Rot: 4, Scale: 1}

	coarse := NewAnimation(from, to, DefaultSpring())
	fine := NewAnimation(from, to, DefaultSpring())

	coarse.Step(48 * time.Millisecond)
	for i := 0; i < 3; i++ {
		fine.Step(16 * time.Millisecond)
	}

	if math.Abs(coarse.Current().X-fine.Current().X) > 1e-9 {
		t.Fatalf("frame slicing changed the result: %v vs %v", coarse.Current().X, fine.Current().X)
	}
}

func TestAnimationZeroDurationIsNoop(t *testing.T) {
	a := NewAnimation(Transform{X: 10, Scale: 1}, Rest, SpringConfig{})
	if got := a.Step(0); got.X != 10 {
		t.Fatalf("zero step moved the card: %+v", got)
	}
	if a.Target() != Rest {
		t.Fatalf("unexpected target: %+v", a.Target())
	}
}
