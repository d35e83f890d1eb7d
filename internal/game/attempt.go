package game

import "time"

// Type identifies which reaction game produced a session or score.
type Type string

const (
	TapTest    Type = "TAP_TEST"
	AudioTest  Type = "AUDIO_TEST"
	GoNoGoTest Type = "GO_NO_GO_TEST"
)

// Attempt is one round's measured or failed response. The machine creates
// exactly one per round; it is never modified afterwards.
type Attempt struct {
	Number     int
	ReactionMs int
	Valid      bool
	Timestamp  time.Time
}

func NewAttempt(number, reactionMs int, valid bool) Attempt {
	return Attempt{
		Number:     number,
		ReactionMs: reactionMs,
		Valid:      valid,
		Timestamp:  time.Now(),
	}
}
