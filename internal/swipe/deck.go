package swipe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/domain/model"
	"github.com/jwong2529/humor-study/internal/domain/rules"
)

// Observer hears about deck transitions. Callbacks run on the deck's goroutine.
type Observer interface {
	CardShown(item model.FeedItem, position int)
	Committed(outcome Outcome)
	Exhausted()
}

type nopObserver struct{}

func (nopObserver) CardShown(model.FeedItem, int) {}
func (nopObserver) Committed(Outcome)             {}
func (nopObserver) Exhausted()                    {}

// Frame is the rendered state of one card.
type Frame struct {
	ItemID    string
	Transform Transform
	Like      float64
	Nope      float64
	Leaving   bool
}

type DeckDependencies struct {
	Voter     Voter
	Scheduler Scheduler
	Logger    *zap.Logger
	Observer  Observer
}

// Deck binds a Cursor to one Engine per card. Cards that were committed keep
// animating off screen after the next card is shown.
type Deck struct {
	ctx      context.Context
	cfg      Config
	deps     DeckDependencies
	logger   *zap.Logger
	observer Observer

	cursor  *Cursor
	current *Engine
	leaving []*Engine
}

func NewDeck(ctx context.Context, items []model.FeedItem, deps DeckDependencies, cfg Config) *Deck {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := deps.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	d := &Deck{
		ctx:      ctx,
		cfg:      cfg.withDefaults(),
		deps:     deps,
		logger:   logger,
		observer: observer,
		cursor:   NewCursor(items),
	}
	d.show()
	return d
}

func (d *Deck) Cursor() *Cursor {
	return d.cursor
}

func (d *Deck) Current() (model.FeedItem, bool) {
	return d.cursor.Current()
}

func (d *Deck) Engine() *Engine {
	return d.current
}

func (d *Deck) SetViewportWidth(width float64) {
	if width <= 0 {
		return
	}
	d.cfg.ViewportWidth = width
	if d.current != nil {
		d.current.SetViewportWidth(width)
	}
}

func (d *Deck) PointerDown(p Pointer) error {
	if d.current == nil {
		return ErrExhausted
	}
	return d.current.Begin(p)
}

func (d *Deck) PointerMove(p Pointer) {
	if d.current != nil {
		d.current.Update(p)
	}
}

func (d *Deck) PointerUp() (Outcome, error) {
	return d.release(false)
}

func (d *Deck) PointerLost() (Outcome, error) {
	return d.release(true)
}

func (d *Deck) release(lost bool) (Outcome, error) {
	if d.current == nil {
		return Outcome{}, ErrExhausted
	}

	var (
		outcome Outcome
		err     error
	)
	if lost {
		outcome, err = d.current.LostCapture()
	} else {
		outcome, err = d.current.Release()
	}
	if err != nil {
		return Outcome{}, err
	}
	if outcome.Committed() {
		d.observer.Committed(outcome)
	}
	return outcome, nil
}

// Step advances every running animation and returns the frames that moved.
func (d *Deck) Step(dt time.Duration) []Frame {
	var frames []Frame

	kept := d.leaving[:0]
	for _, e := range d.leaving {
		e.Step(dt)
		frames = append(frames, frameOf(e, true))
		if e.Animating() {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(d.leaving); i++ {
		d.leaving[i] = nil
	}
	d.leaving = kept

	if d.current != nil && d.current.Animating() {
		d.current.Step(dt)
		frames = append(frames, frameOf(d.current, false))
	}
	return frames
}

// Frame is the current card's state, false when the deck is exhausted.
func (d *Deck) Frame() (Frame, bool) {
	if d.current == nil {
		return Frame{}, false
	}
	return frameOf(d.current, false), true
}

func (d *Deck) Animating() bool {
	if len(d.leaving) > 0 {
		return true
	}
	return d.current != nil && d.current.Animating()
}

func (d *Deck) show() {
	item, ok := d.cursor.Current()
	if !ok {
		d.current = nil
		d.observer.Exhausted()
		return
	}

	var engine *Engine
	engine = NewEngine(d.ctx, item, Dependencies{
		Voter:     d.deps.Voter,
		Scheduler: d.deps.Scheduler,
		Logger:    d.logger,
		OnAdvance: func() { d.advance(engine) },
	}, d.cfg)
	d.current = engine
	d.observer.CardShown(item, d.cursor.Position())
}

func (d *Deck) advance(from *Engine) {
	if from != d.current {
		d.logger.Warn("stale card advance ignored", zap.String("caption_id", from.Item().ID))
		return
	}
	if from.Animating() {
		d.leaving = append(d.leaving, from)
	}
	d.cursor.Advance()
	d.show()
}

func frameOf(e *Engine, leaving bool) Frame {
	t := e.Transform()
	return Frame{
		ItemID:    e.Item().ID,
		Transform: t,
		Like:      rules.LikeOpacity(t.X),
		Nope:      rules.NopeOpacity(t.X),
		Leaving:   leaving,
	}
}
