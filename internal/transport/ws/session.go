package ws

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/domain/model"
	votesvc "github.com/jwong2529/humor-study/internal/services/votes"
	"github.com/jwong2529/humor-study/internal/swipe"
	"github.com/jwong2529/humor-study/internal/transport/http/dto"
	"github.com/jwong2529/humor-study/internal/transport/http/handlers"
)

// session owns one socket. Deck state is only touched on loop; conn writes
// only happen on the writer goroutine.
type session struct {
	conn      *websocket.Conn
	votes     handlers.VoteSubmitter
	profileID uuid.UUID
	cfg       Config
	logger    *zap.Logger

	loop     *swipe.Loop
	deck     *swipe.Deck
	outbox   chan dto.GestureServerMessage
	done     <-chan struct{}
	lastTick time.Time

	// vote submissions read this off the loop goroutine
	shownMu sync.Mutex
	shownAt map[string]time.Time
}

func newSession(conn *websocket.Conn, votes handlers.VoteSubmitter, profileID uuid.UUID, cfg Config, logger *zap.Logger) *session {
	return &session{
		conn:      conn,
		votes:     votes,
		profileID: profileID,
		cfg:       cfg,
		logger:    logger,
		loop:      swipe.NewLoop(256),
		outbox:    make(chan dto.GestureServerMessage, outboxSize),
		shownAt:   make(map[string]time.Time),
	}
}

func (s *session) run(ctx context.Context, items []model.FeedItem) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.conn.Close()
	s.done = ctx.Done()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = s.loop.Run(ctx)
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx)
		cancel()
	}()

	s.loop.Post(func() {
		s.deck = swipe.NewDeck(ctx, items, swipe.DeckDependencies{
			Voter:     s,
			Scheduler: swipe.LoopScheduler{Loop: s.loop},
			Logger:    s.logger,
			Observer:  s,
		}, s.cfg.Swipe)
		s.lastTick = time.Now()
	})

	go s.tickLoop(ctx)

	s.logger.Info("gesture session started", zap.Int("items", len(items)))
	s.readLoop(ctx)
	cancel()

	<-loopDone
	<-writerDone
	s.logger.Info("gesture session closed")
}

func (s *session) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg dto.GestureClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("gesture socket read failed", zap.Error(err))
			}
			// a vanished pointer is a lost capture
			s.loop.Post(func() { s.release(true) })
			return
		}
		if ctx.Err() != nil {
			return
		}
		if !s.loop.Post(func() { s.handle(msg) }) {
			return
		}
	}
}

func (s *session) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.loop.Post(s.tick)
		}
	}
}

func (s *session) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	// unblocks readLoop when the writer gives up first
	defer s.conn.Close()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case msg := <-s.outbox:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("gesture socket write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *session) handle(msg dto.GestureClientMessage) {
	if s.deck == nil {
		return
	}

	p := swipe.Pointer{X: msg.X, Y: msg.Y, At: time.UnixMilli(msg.TMS)}
	switch strings.ToLower(msg.Type) {
	case "viewport":
		s.deck.SetViewportWidth(msg.Width)
	case "down":
		if err := s.deck.PointerDown(p); err != nil {
			s.sendError(err)
			return
		}
		s.sendCurrentFrame()
	case "move":
		s.deck.PointerMove(p)
		s.sendCurrentFrame()
	case "up":
		s.deck.PointerMove(p)
		s.release(false)
	case "lost":
		s.release(true)
	default:
		s.send(dto.GestureServerMessage{
			Type:  "error",
			Error: &dto.GestureErrorFrame{Code: "UNKNOWN_MESSAGE", Message: "unknown message type"},
		}, false)
	}
}

func (s *session) release(lost bool) {
	if s.deck == nil {
		return
	}

	var (
		outcome swipe.Outcome
		err     error
	)
	if lost {
		outcome, err = s.deck.PointerLost()
	} else {
		outcome, err = s.deck.PointerUp()
	}
	if err != nil {
		if !errors.Is(err, swipe.ErrNoGesture) {
			s.sendError(err)
		}
		return
	}
	if !outcome.Committed() {
		s.send(dto.GestureServerMessage{Type: "cancel", Outcome: outcomeDTO(outcome)}, true)
	}
}

func (s *session) tick() {
	now := time.Now()
	dt := now.Sub(s.lastTick)
	s.lastTick = now

	if s.deck == nil || !s.deck.Animating() {
		return
	}

	frames := s.deck.Step(dt)
	if len(frames) == 0 {
		return
	}

	out := make([]dto.GestureFrame, 0, len(frames))
	for _, f := range frames {
		out = append(out, frameDTO(f))
	}
	s.send(dto.GestureServerMessage{Type: "frame", Frames: out}, false)
}

func (s *session) sendCurrentFrame() {
	if frame, ok := s.deck.Frame(); ok {
		s.send(dto.GestureServerMessage{Type: "frame", Frames: []dto.GestureFrame{frameDTO(frame)}}, false)
	}
}

func (s *session) sendError(err error) {
	code := "GESTURE_REJECTED"
	switch {
	case errors.Is(err, swipe.ErrGestureActive):
		code = "GESTURE_ACTIVE"
	case errors.Is(err, swipe.ErrCardGone):
		code = "CARD_GONE"
	case errors.Is(err, swipe.ErrExhausted):
		code = "FEED_EXHAUSTED"
	}
	s.send(dto.GestureServerMessage{
		Type:  "error",
		Error: &dto.GestureErrorFrame{Code: code, Message: err.Error()},
	}, false)
}

// send never blocks the loop for frames; control messages wait for room.
func (s *session) send(msg dto.GestureServerMessage, reliable bool) {
	if !reliable {
		select {
		case s.outbox <- msg:
		default:
		}
		return
	}

	select {
	case s.outbox <- msg:
	case <-s.done:
	}
}

// SubmitVote records the vote with the release telemetry of the gesture
// that committed it.
func (s *session) SubmitVote(ctx context.Context, itemID string, value enums.VoteValue) error {
	telemetry := &votesvc.Telemetry{Source: "ws"}
	if outcome, ok := swipe.OutcomeFromContext(ctx); ok {
		telemetry.ReleaseVX = outcome.ReleaseVX
		telemetry.OffsetX = outcome.OffsetX
	}
	if shown, ok := s.takeShown(itemID); ok {
		telemetry.ViewMS = time.Since(shown).Milliseconds()
	}
	_, err := s.votes.Submit(ctx, s.profileID, itemID, int(value), telemetry)
	return err
}

func (s *session) takeShown(itemID string) (time.Time, bool) {
	s.shownMu.Lock()
	defer s.shownMu.Unlock()
	shown, ok := s.shownAt[itemID]
	delete(s.shownAt, itemID)
	return shown, ok
}

func (s *session) CardShown(item model.FeedItem, position int) {
	s.shownMu.Lock()
	s.shownAt[item.ID] = time.Now()
	s.shownMu.Unlock()

	card := handlers.FeedItemDTO(item)
	s.send(dto.GestureServerMessage{Type: "card", Card: &card, Index: position}, true)
}

func (s *session) Committed(outcome swipe.Outcome) {
	s.logger.Debug("swipe committed",
		zap.String("caption_id", outcome.ItemID),
		zap.String("decision", outcome.Decision.String()),
		zap.Float64("release_vx", outcome.ReleaseVX),
	)
	s.send(dto.GestureServerMessage{Type: "commit", Outcome: outcomeDTO(outcome)}, true)
}

func (s *session) Exhausted() {
	s.send(dto.GestureServerMessage{Type: "exhausted"}, true)
}

func frameDTO(f swipe.Frame) dto.GestureFrame {
	return dto.GestureFrame{
		ItemID:  f.ItemID,
		X:       f.Transform.X,
		Y:       f.Transform.Y,
		Rot:     f.Transform.Rot,
		Scale:   f.Transform.Scale,
		Like:    f.Like,
		Nope:    f.Nope,
		Leaving: f.Leaving,
	}
}

func outcomeDTO(o swipe.Outcome) *dto.GestureOutcome {
	out := &dto.GestureOutcome{
		ItemID:    o.ItemID,
		ReleaseVX: o.ReleaseVX,
		OffsetX:   o.OffsetX,
	}
	if o.Committed() {
		out.Decision = o.Decision.String()
		out.VoteValue = int(o.Value)
	}
	return out
}
