package swipe

import (
	"math"
	"time"
)

type SpringConfig struct {
	Tension   float64
	Friction  float64
	Mass      float64
	Precision float64
}

func DefaultSpring() SpringConfig {
	return SpringConfig{
		Tension:   200,
		Friction:  50,
		Mass:      1,
		Precision: 0.01,
	}
}

func (c SpringConfig) withDefaults() SpringConfig {
	def := DefaultSpring()
	if c.Tension <= 0 {
		c.Tension = def.Tension
	}
	if c.Friction <= 0 {
		c.Friction = def.Friction
	}
	if c.Mass <= 0 {
		c.Mass = def.Mass
	}
	if c.Precision <= 0 {
		c.Precision = def.Precision
	}
	return c
}

type Transform struct {
	X     float64
	Y     float64
	Rot   float64
	Scale float64
}

var Rest = Transform{Scale: 1}

type springValue struct {
	position float64
	velocity float64
	target   float64
	done     bool
}

func newSpringValue(from, to float64) springValue {
	return springValue{position: from, target: to, done: from == to}
}

// step integrates in 1ms sub-steps so the result does not depend on how the
// caller slices time into frames.
func (v *springValue) step(cfg SpringConfig, ms float64) {
	restVelocity := cfg.Precision / 10
	for ms > 0 && !v.done {
		dt := math.Min(1, ms)
		ms -= dt

		springForce := -cfg.Tension * 0.000001 * (v.position - v.target)
		dampingForce := -cfg.Friction * 0.001 * v.velocity
		acceleration := (springForce + dampingForce) / cfg.Mass

		v.velocity += acceleration * dt
		v.position += v.velocity * dt

		if math.Abs(v.position-v.target) <= cfg.Precision && math.Abs(v.velocity) <= restVelocity {
			v.position = v.target
			v.velocity = 0
			v.done = true
		}
	}
}

type Animation struct {
	cfg   SpringConfig
	x     springValue
	y     springValue
	rot   springValue
	scale springValue
}

func NewAnimation(from, to Transform, cfg SpringConfig) *Animation {
	return &Animation{
		cfg:   cfg.withDefaults(),
		x:     newSpringValue(from.X, to.X),
		y:     newSpringValue(from.Y, to.Y),
		rot:   newSpringValue(from.Rot, to.Rot),
		scale: newSpringValue(from.Scale, to.Scale),
	}
}

func (a *Animation) Step(dt time.Duration) Transform {
	if dt > 0 {
		ms := float64(dt) / float64(time.Millisecond)
		a.x.step(a.cfg, ms)
		a.y.step(a.cfg, ms)
		a.rot.step(a.cfg, ms)
		a.scale.step(a.cfg, ms)
	}
	return a.Current()
}

func (a *Animation) Current() Transform {
	return Transform{
		X:     a.x.position,
		Y:     a.y.position,
		Rot:   a.rot.position,
		Scale: a.scale.position,
	}
}

func (a *Animation) Target() Transform {
	return Transform{
		X:     a.x.target,
		Y:     a.y.target,
		Rot:   a.rot.target,
		Scale: a.scale.target,
	}
}

func (a *Animation) Done() bool {
	return a.x.done && a.y.done && a.rot.done && a.scale.done
}
