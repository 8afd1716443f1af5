package enums

type VoteValue int

const (
	VoteDown VoteValue = -1
	VoteUp   VoteValue = 1
)

func (v VoteValue) Valid() bool {
	return v == VoteUp || v == VoteDown
}
