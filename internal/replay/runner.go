package replay

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/domain/model"
	"github.com/jwong2529/humor-study/internal/swipe"
)

// maxSettleFrames bounds the wait for animations and timers after a gesture.
const maxSettleFrames = 10_000

var ErrSettleTimeout = errors.New("deck did not settle")

type GestureResult struct {
	Index   int
	ItemID  string
	Outcome swipe.Outcome
	Err     error
}

type VoteResult struct {
	ItemID string
	Value  enums.VoteValue
	Err    error
}

type Report struct {
	Gestures  []GestureResult
	Votes     []VoteResult
	Shown     []string
	Frames    int
	Exhausted bool
}

func (r Report) Committed() int {
	n := 0
	for _, g := range r.Gestures {
		if g.Err == nil && g.Outcome.Committed() {
			n++
		}
	}
	return n
}

type Runner struct {
	voter  swipe.Voter
	cfg    swipe.Config
	logger *zap.Logger
}

func NewRunner(voter swipe.Voter, cfg swipe.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{voter: voter, cfg: cfg, logger: logger}
}

// Run plays the trace against items and waits for every submitted vote.
func (r *Runner) Run(ctx context.Context, items []model.FeedItem, trace Trace) (Report, error) {
	trace, err := trace.normalize()
	if err != nil {
		return Report{}, err
	}

	var (
		report   Report
		mu       sync.Mutex
		expected int
	)
	submitted := make(chan struct{}, len(trace.Gestures))

	voter := swipe.VoterFunc(func(ctx context.Context, itemID string, value enums.VoteValue) error {
		defer func() { submitted <- struct{}{} }()

		var err error
		if r.voter != nil {
			err = r.voter.SubmitVote(ctx, itemID, value)
		}
		mu.Lock()
		report.Votes = append(report.Votes, VoteResult{ItemID: itemID, Value: value, Err: err})
		mu.Unlock()
		return err
	})

	cfg := r.cfg
	if trace.ViewportWidth > 0 {
		cfg.ViewportWidth = trace.ViewportWidth
	}

	sched := &virtualScheduler{}
	rec := &recorder{}
	deck := swipe.NewDeck(ctx, items, swipe.DeckDependencies{
		Voter:     voter,
		Scheduler: sched,
		Logger:    r.logger,
		Observer:  rec,
	}, cfg)

	var runErr error
	for i, g := range trace.Gestures {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		result := r.play(deck, i, g)
		report.Gestures = append(report.Gestures, result)
		if result.Err == nil && result.Outcome.Committed() {
			expected++
		}
		if errors.Is(result.Err, swipe.ErrExhausted) {
			break
		}

		frames, err := settle(deck, sched, trace.FrameInterval)
		report.Frames += frames
		if err != nil {
			runErr = err
			break
		}
	}

	// votes run detached; wait for them before reporting
wait:
	for ; expected > 0; expected-- {
		select {
		case <-submitted:
		case <-ctx.Done():
			if runErr == nil {
				runErr = ctx.Err()
			}
			break wait
		}
	}

	mu.Lock()
	defer mu.Unlock()
	report.Shown = rec.shown
	report.Exhausted = rec.exhausted
	return report, runErr
}

func (r *Runner) play(deck *swipe.Deck, index int, g Gesture) GestureResult {
	result := GestureResult{Index: index}
	if item, ok := deck.Current(); ok {
		result.ItemID = item.ID
	}

	if err := deck.PointerDown(pointer(g.Points[0])); err != nil {
		result.Err = err
		return result
	}
	for _, p := range g.Points[1:] {
		deck.PointerMove(pointer(p))
	}

	var err error
	if g.Lost {
		result.Outcome, err = deck.PointerLost()
	} else {
		result.Outcome, err = deck.PointerUp()
	}
	result.Err = err

	r.logger.Debug("gesture replayed",
		zap.Int("index", index),
		zap.String("caption_id", result.ItemID),
		zap.String("outcome", result.Outcome.Kind.String()),
		zap.Float64("release_vx", result.Outcome.ReleaseVX),
	)
	return result
}

func settle(deck *swipe.Deck, sched *virtualScheduler, interval time.Duration) (int, error) {
	frames := 0
	for deck.Animating() || sched.Pending() > 0 {
		if frames >= maxSettleFrames {
			return frames, ErrSettleTimeout
		}
		deck.Step(interval)
		sched.Advance(interval)
		frames++
	}
	return frames, nil
}

func pointer(p Point) swipe.Pointer {
	return swipe.Pointer{X: p.X, Y: p.Y, At: time.UnixMilli(p.TMS)}
}

type recorder struct {
	shown     []string
	exhausted bool
}

func (r *recorder) CardShown(item model.FeedItem, _ int) {
	r.shown = append(r.shown, item.ID)
}

func (r *recorder) Committed(swipe.Outcome) {}

func (r *recorder) Exhausted() {
	r.exhausted = true
}
