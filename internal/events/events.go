package events

// StateChangeEvent is published whenever the trial machine enters a new
// state. Round is the number of attempts recorded so far.
type StateChangeEvent struct {
	State string
	Round int
}

// RoundResultEvent is published once per round, when its attempt is
// recorded.
type RoundResultEvent struct {
	Number     int
	ReactionMs int
	Valid      bool
}

type Bus struct {
	StateChanges chan StateChangeEvent
	RoundResults chan RoundResultEvent
}

func NewBus() *Bus {
	return &Bus{
		StateChanges: make(chan StateChangeEvent, 32),
		RoundResults: make(chan RoundResultEvent, 16),
	}
}

// PublishState sends without blocking; a slow consumer loses events
// rather than stalling the trial.
func (b *Bus) PublishState(ev StateChangeEvent) {
	select {
	case b.StateChanges <- ev:
	default:
	}
}

func (b *Bus) PublishRound(ev RoundResultEvent) {
	select {
	case b.RoundResults <- ev:
	default:
	}
}
