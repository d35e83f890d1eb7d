package game

import (
	"math/rand"

	"sprinttap/internal/config"
)

// Validator flags reaction times outside the biologically plausible
// window. Implausible attempts stay on the record, just marked invalid.
type Validator struct {
	MinMs int
	MaxMs int
}

func NewValidator(cfg config.Game) Validator {
	return Validator{MinMs: cfg.HumanMinReactionMs, MaxMs: cfg.HumanMaxReactionMs}
}

func (v Validator) OK(reactionMs int) bool {
	return reactionMs >= v.MinMs && reactionMs <= v.MaxMs
}

// RandomWaitDelay draws the stimulus delay uniformly from [minMs, maxMs].
// A fixed delay would let the subject anticipate the stimulus.
func RandomWaitDelay(minMs, maxMs int) int {
	return rand.Intn(maxMs-minMs+1) + minMs
}
