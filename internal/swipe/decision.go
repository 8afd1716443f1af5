package swipe

import (
	"context"

	"github.com/jwong2529/humor-study/internal/domain/enums"
)

type Decision int

const (
	Reject Decision = -1
	Accept Decision = 1
)

func decisionFromDirection(dir int) Decision {
	if dir < 0 {
		return Reject
	}
	return Accept
}

func (d Decision) VoteValue() enums.VoteValue {
	if d == Reject {
		return enums.VoteDown
	}
	return enums.VoteUp
}

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

type OutcomeKind int

const (
	OutcomeCancel OutcomeKind = iota
	OutcomeCommit
)

func (k OutcomeKind) String() string {
	if k == OutcomeCommit {
		return "commit"
	}
	return "cancel"
}

// Outcome is what a released gesture resolved to. Decision and Value are only
// meaningful when Kind is OutcomeCommit.
type Outcome struct {
	Kind      OutcomeKind
	ItemID    string
	Decision  Decision
	Value     enums.VoteValue
	ReleaseVX float64
	OffsetX   float64
}

func (o Outcome) Committed() bool {
	return o.Kind == OutcomeCommit
}

type outcomeKey struct{}

func contextWithOutcome(ctx context.Context, o Outcome) context.Context {
	return context.WithValue(ctx, outcomeKey{}, o)
}

// OutcomeFromContext returns the commit a Voter is being called for.
func OutcomeFromContext(ctx context.Context) (Outcome, bool) {
	o, ok := ctx.Value(outcomeKey{}).(Outcome)
	return o, ok
}
