package swipe

import "time"

// Pointer is one pointer sample. At only needs to be monotonic within a
// gesture; wall-clock time is not required.
type Pointer struct {
	X  float64
	Y  float64
	At time.Time
}

// DragState lives for exactly one gesture. Velocities are in units per
// millisecond.
type DragState struct {
	X    float64
	Y    float64
	VX   float64
	VY   float64
	DirX float64
	DirY float64
	Down bool

	Samples int

	origin float64
	start  Pointer
	last   Pointer
}

func newDragState(p Pointer, originX float64) *DragState {
	return &DragState{
		X:      originX,
		Down:   true,
		origin: originX,
		start:  p,
		last:   p,
	}
}

func (d *DragState) apply(p Pointer) {
	dx := p.X - d.last.X
	dy := p.Y - d.last.Y

	d.X = d.origin + (p.X - d.start.X)
	d.Y = p.Y - d.start.Y
	if dx != 0 {
		d.DirX = sign(dx)
	}
	if dy != 0 {
		d.DirY = sign(dy)
	}
	d.Samples++

	elapsed := p.At.Sub(d.last.At)
	if elapsed <= 0 {
		// skipped for velocity only; the next timed sample spans both
		return
	}

	ms := float64(elapsed) / float64(time.Millisecond)
	d.VX = dx / ms
	d.VY = dy / ms
	d.last = p
}

func sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
