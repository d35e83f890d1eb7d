package stats

import (
	"math"

	"sprinttap/internal/game"
)

// Statistics summarizes one session's attempts. It is derived from the
// attempt list on demand and never mutated in place.
type Statistics struct {
	AverageMs     int
	BestMs        int
	WorstMs       int
	TotalAttempts int
	ValidAttempts int
}

// Aggregate computes Statistics over a finished attempt list. Only valid
// attempts contribute to the time fields; with none, every time field is
// zero and only TotalAttempts is kept.
func Aggregate(attempts []game.Attempt) Statistics {
	st := Statistics{TotalAttempts: len(attempts)}

	sum := 0
	for _, a := range attempts {
		if !a.Valid {
			continue
		}
		if st.ValidAttempts == 0 {
			st.BestMs = a.ReactionMs
			st.WorstMs = a.ReactionMs
		} else {
			if a.ReactionMs < st.BestMs {
				st.BestMs = a.ReactionMs
			}
			if a.ReactionMs > st.WorstMs {
				st.WorstMs = a.ReactionMs
			}
		}
		sum += a.ReactionMs
		st.ValidAttempts++
	}

	if st.ValidAttempts > 0 {
		st.AverageMs = int(math.Round(float64(sum) / float64(st.ValidAttempts)))
	}
	return st
}

// Accuracy is the percentage of valid attempts, rounded. Zero attempts
// count as zero accuracy.
func Accuracy(attempts []game.Attempt) int {
	if len(attempts) == 0 {
		return 0
	}
	valid := 0
	for _, a := range attempts {
		if a.Valid {
			valid++
		}
	}
	return int(math.Round(float64(valid) / float64(len(attempts)) * 100))
}

type Rating string

const (
	RatingExcellent Rating = "EXCELLENT"
	RatingGood      Rating = "GOOD"
	RatingAverage   Rating = "AVERAGE"
	RatingSlow      Rating = "SLOW"
	RatingNoData    Rating = "NO_DATA"
)

// Rate maps a session's average reaction time onto a coarse performance
// band for display.
func Rate(averageMs, validAttempts int) Rating {
	switch {
	case validAttempts == 0 || averageMs <= 0:
		return RatingNoData
	case averageMs <= 200:
		return RatingExcellent
	case averageMs <= 300:
		return RatingGood
	case averageMs <= 500:
		return RatingAverage
	default:
		return RatingSlow
	}
}
