// Package swipe turns pointer samples into accept/reject decisions on a single
// feed card, animates the card and submits the resulting vote.
package swipe

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/domain/model"
	"github.com/jwong2529/humor-study/internal/domain/rules"
)

var (
	ErrGestureActive = errors.New("gesture already active")
	ErrNoGesture     = errors.New("no active gesture")
	ErrCardGone      = errors.New("card already committed")
	ErrExhausted     = errors.New("feed exhausted")
)

type State int

const (
	StateIdle State = iota
	StateDragging
	StateCancelling
	StateCommitting
	StateGone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateCancelling:
		return "cancelling"
	case StateCommitting:
		return "committing"
	case StateGone:
		return "gone"
	default:
		return "unknown"
	}
}

// Voter submits a vote. It is called on its own goroutine and its error is
// only logged.
type Voter interface {
	SubmitVote(ctx context.Context, itemID string, value enums.VoteValue) error
}

type VoterFunc func(ctx context.Context, itemID string, value enums.VoteValue) error

func (f VoterFunc) SubmitVote(ctx context.Context, itemID string, value enums.VoteValue) error {
	return f(ctx, itemID, value)
}

type Config struct {
	VelocityThreshold float64
	AdvanceDelay      time.Duration
	ViewportWidth     float64
	ExitMargin        float64
	SubmitTimeout     time.Duration
	Spring            SpringConfig
}

func DefaultConfig() Config {
	return Config{
		VelocityThreshold: rules.SwipeVelocityThreshold,
		AdvanceDelay:      rules.SwipeAdvanceDelay,
		ViewportWidth:     1280,
		ExitMargin:        rules.SwipeExitMargin,
		SubmitTimeout:     10 * time.Second,
		Spring:            DefaultSpring(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.VelocityThreshold <= 0 {
		c.VelocityThreshold = def.VelocityThreshold
	}
	if c.AdvanceDelay <= 0 {
		c.AdvanceDelay = def.AdvanceDelay
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = def.ViewportWidth
	}
	if c.ExitMargin <= 0 {
		c.ExitMargin = def.ExitMargin
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = def.SubmitTimeout
	}
	c.Spring = c.Spring.withDefaults()
	return c
}

type Dependencies struct {
	Voter     Voter
	Scheduler Scheduler
	Logger    *zap.Logger
	// OnAdvance runs once per committed gesture, AdvanceDelay after the commit.
	OnAdvance func()
}

// Engine is bound to one feed item. Build a new one for every card so no
// transform state carries over. Its methods must be called from one goroutine,
// the same one the Scheduler delivers callbacks on.
type Engine struct {
	ctx       context.Context
	item      model.FeedItem
	cfg       Config
	voter     Voter
	scheduler Scheduler
	onAdvance func()
	logger    *zap.Logger

	state     State
	drag      *DragState
	anim      *Animation
	transform Transform
	advanced  bool
}

func NewEngine(ctx context.Context, item model.FeedItem, deps Dependencies, cfg Config) *Engine {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		ctx:       ctx,
		item:      item,
		cfg:       cfg.withDefaults(),
		voter:     deps.Voter,
		scheduler: deps.Scheduler,
		onAdvance: deps.OnAdvance,
		logger:    logger,
		state:     StateIdle,
		transform: Rest,
	}
}

func (e *Engine) Item() model.FeedItem {
	return e.item
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Transform() Transform {
	return e.transform
}

func (e *Engine) Drag() (DragState, bool) {
	if e.drag == nil {
		return DragState{}, false
	}
	return *e.drag, true
}

func (e *Engine) Animating() bool {
	return e.anim != nil
}

func (e *Engine) SetViewportWidth(width float64) {
	if width > 0 {
		e.cfg.ViewportWidth = width
	}
}

// Begin starts a gesture. A return animation in flight is interrupted and the
// drag continues from wherever the card currently is.
func (e *Engine) Begin(p Pointer) error {
	switch e.state {
	case StateDragging:
		return ErrGestureActive
	case StateCommitting, StateGone:
		return ErrCardGone
	}

	e.anim = nil
	e.drag = newDragState(p, e.transform.X)
	e.state = StateDragging
	e.followDrag()
	return nil
}

func (e *Engine) Update(p Pointer) {
	if e.state != StateDragging || e.drag == nil {
		return
	}
	e.drag.apply(p)
	e.followDrag()
}

// Release resolves the gesture with the last sample. The trigger rule only
// looks at horizontal release velocity; the sign of the movement direction,
// not of the offset, picks the decision.
func (e *Engine) Release() (Outcome, error) {
	if e.state != StateDragging || e.drag == nil {
		return Outcome{}, ErrNoGesture
	}

	drag := *e.drag
	e.drag = nil

	outcome := Outcome{
		Kind:      OutcomeCancel,
		ItemID:    e.item.ID,
		ReleaseVX: drag.VX,
		OffsetX:   drag.X,
	}

	if !rules.ShouldCommit(drag.VX, e.cfg.VelocityThreshold) {
		e.state = StateCancelling
		e.anim = NewAnimation(e.transform, Rest, e.cfg.Spring)
		return outcome, nil
	}

	dir := rules.Direction(drag.DirX)
	decision := decisionFromDirection(dir)
	outcome.Kind = OutcomeCommit
	outcome.Decision = decision
	outcome.Value = decision.VoteValue()

	e.state = StateCommitting
	e.anim = NewAnimation(e.transform, Transform{
		X:     rules.ExitX(dir, e.cfg.ViewportWidth, e.cfg.ExitMargin),
		Y:     e.transform.Y,
		Rot:   rules.ExitRotation(drag.X, dir, drag.VX),
		Scale: 1,
	}, e.cfg.Spring)

	e.submit(outcome)
	e.scheduleAdvance()

	return outcome, nil
}

// LostCapture treats a lost pointer as a release with the last known sample.
func (e *Engine) LostCapture() (Outcome, error) {
	return e.Release()
}

func (e *Engine) Step(dt time.Duration) Transform {
	if e.anim == nil {
		return e.transform
	}

	e.transform = e.anim.Step(dt)
	if e.anim.Done() {
		e.anim = nil
		switch e.state {
		case StateCancelling:
			e.state = StateIdle
		case StateCommitting:
			e.state = StateGone
		}
	}
	return e.transform
}

func (e *Engine) followDrag() {
	e.transform = Transform{
		X:     e.drag.X,
		Y:     0,
		Rot:   rules.DragRotation(e.drag.X),
		Scale: rules.DragScale,
	}
}

func (e *Engine) submit(outcome Outcome) {
	itemID := e.item.ID
	value := outcome.Value
	if e.voter == nil {
		e.logger.Warn("vote submission skipped, no voter configured", zap.String("caption_id", itemID))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(e.ctx), e.cfg.SubmitTimeout)
	ctx = contextWithOutcome(ctx, outcome)
	voter := e.voter
	logger := e.logger
	go func() {
		defer cancel()
		if err := voter.SubmitVote(ctx, itemID, value); err != nil {
			logger.Warn("vote submission failed",
				zap.String("caption_id", itemID),
				zap.Int("vote_value", int(value)),
				zap.Error(err),
			)
			return
		}
		logger.Debug("vote submitted",
			zap.String("caption_id", itemID),
			zap.Int("vote_value", int(value)),
		)
	}()
}

func (e *Engine) scheduleAdvance() {
	if e.scheduler == nil {
		e.logger.Warn("card advance skipped, no scheduler configured", zap.String("caption_id", e.item.ID))
		return
	}
	e.scheduler.AfterFunc(e.cfg.AdvanceDelay, func() {
		if e.advanced {
			return
		}
		e.advanced = true
		if e.onAdvance != nil {
			e.onAdvance()
		}
	})
}
