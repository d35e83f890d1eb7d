package history

import (
	"math"

	"sprinttap/internal/game"
	"sprinttap/internal/session"
)

type Direction string

const (
	Improving Direction = "IMPROVING"
	Stable    Direction = "STABLE"
	Declining Direction = "DECLINING"
)

// Trend is the directional change in average reaction time across recent
// sessions. Percentage is always reported as a magnitude for Declining.
type Trend struct {
	Direction  Direction
	Percentage int
}

const trendWindow = 5

// Changes smaller than this are reported as stable so the trend does not
// flap on session-to-session noise.
const trendDeadZonePct = 5

// TrendOf compares the oldest and newest qualifying session averages in
// the recent window. Input is most-recent-first, as the store returns it.
func TrendOf(sessions []*session.Session) Trend {
	recent := qualifying(sessions)
	if len(recent) > trendWindow {
		recent = recent[:trendWindow]
	}
	if len(recent) < 2 {
		return Trend{Direction: Stable}
	}

	// Oldest to newest within the window.
	first := recent[len(recent)-1].Statistics.AverageMs
	last := recent[0].Statistics.AverageMs
	if first == 0 || last == 0 {
		return Trend{Direction: Stable}
	}

	pct := (float64(first) - float64(last)) / float64(first) * 100
	switch {
	case math.Abs(pct) < trendDeadZonePct:
		return Trend{Direction: Stable, Percentage: int(math.Round(pct))}
	case pct > 0:
		return Trend{Direction: Improving, Percentage: int(math.Round(pct))}
	default:
		return Trend{Direction: Declining, Percentage: int(math.Round(math.Abs(pct)))}
	}
}

type ConsistencyRating string

const (
	VeryConsistent ConsistencyRating = "VERY_CONSISTENT"
	Consistent     ConsistencyRating = "CONSISTENT"
	Moderate       ConsistencyRating = "MODERATE"
	Inconsistent   ConsistencyRating = "INCONSISTENT"
)

// Consistency scores how tightly grouped a session's reaction times are:
// 100 minus the relative standard deviation as a percentage, floored at
// zero.
type Consistency struct {
	Score  int
	Rating ConsistencyRating
}

func ConsistencyOf(attempts []game.Attempt) Consistency {
	var times []float64
	for _, a := range attempts {
		if a.Valid {
			times = append(times, float64(a.ReactionMs))
		}
	}
	if len(times) < 2 {
		return Consistency{Score: 0, Rating: Inconsistent}
	}

	mean := 0.0
	for _, t := range times {
		mean += t
	}
	mean /= float64(len(times))

	variance := 0.0
	for _, t := range times {
		variance += (t - mean) * (t - mean)
	}
	variance /= float64(len(times))
	stddev := math.Sqrt(variance)

	score := math.Max(0, 100-(stddev/mean)*100)

	c := Consistency{Score: int(math.Round(score))}
	switch {
	case c.Score >= 80:
		c.Rating = VeryConsistent
	case c.Score >= 60:
		c.Rating = Consistent
	case c.Score >= 40:
		c.Rating = Moderate
	default:
		c.Rating = Inconsistent
	}
	return c
}

// Insight is a presentation-neutral finding about recent play. Keys map
// to display strings elsewhere; Params carries any numbers they need.
type Insight struct {
	Key    string
	Params map[string]int
}

// Absolute bands for the latest session's average.
const (
	excellentBelowMs    = 250
	needsPracticeOverMs = 500
)

// Insights derives an ordered list from trend, latest-session
// consistency, and the latest average against fixed bands. Input is
// most-recent-first.
func Insights(sessions []*session.Session) []Insight {
	completed := qualifying(sessions)
	if len(completed) == 0 {
		return []Insight{{Key: "playMore"}}
	}

	var insights []Insight

	trend := TrendOf(completed)
	switch trend.Direction {
	case Improving:
		insights = append(insights, Insight{Key: "improved", Params: map[string]int{"percentage": trend.Percentage}})
	case Declining:
		insights = append(insights, Insight{Key: "declined", Params: map[string]int{"percentage": trend.Percentage}})
	default:
		insights = append(insights, Insight{Key: "stable"})
	}

	latest := completed[0]
	switch ConsistencyOf(latest.Attempts).Rating {
	case VeryConsistent:
		insights = append(insights, Insight{Key: "consistent"})
	case Inconsistent:
		insights = append(insights, Insight{Key: "inconsistent"})
	}

	if avg := latest.Statistics.AverageMs; avg > 0 {
		if avg < excellentBelowMs {
			insights = append(insights, Insight{Key: "excellent"})
		} else if avg > needsPracticeOverMs {
			insights = append(insights, Insight{Key: "needsPractice"})
		}
	}

	return insights
}

// Summary aggregates a whole stretch of history for the profile view.
type Summary struct {
	TotalGames     int
	CompletedGames int
	AverageMs      int
	BestMs         int
	WorstMs        int
	SuccessRatePct int
}

func Summarize(sessions []*session.Session) Summary {
	completed := qualifying(sessions)
	sum := Summary{TotalGames: len(sessions), CompletedGames: len(completed)}
	if len(completed) == 0 {
		return sum
	}

	avgTotal := 0
	sum.BestMs = completed[0].Statistics.BestMs
	for _, s := range completed {
		avgTotal += s.Statistics.AverageMs
		if s.Statistics.BestMs < sum.BestMs {
			sum.BestMs = s.Statistics.BestMs
		}
		if s.Statistics.WorstMs > sum.WorstMs {
			sum.WorstMs = s.Statistics.WorstMs
		}
	}
	sum.AverageMs = int(math.Round(float64(avgTotal) / float64(len(completed))))
	sum.SuccessRatePct = int(math.Round(float64(len(completed)) / float64(len(sessions)) * 100))
	return sum
}

// qualifying keeps completed, non-failed sessions with a usable average,
// preserving most-recent-first order.
func qualifying(sessions []*session.Session) []*session.Session {
	var out []*session.Session
	for _, s := range sessions {
		if s.IsCompleted && !s.IsFailed && s.Statistics.AverageMs > 0 {
			out = append(out, s)
		}
	}
	return out
}
