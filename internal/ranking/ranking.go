package ranking

import (
	"sort"
	"time"

	"sprinttap/internal/game"
)

// Entry is one player's standing for a single game type. Rank is derived
// by Resort or Rank and is not stored authoritatively.
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Nickname    string    `json:"nickname"`
	GameType    game.Type `json:"gameType"`
	BestMs      int       `json:"bestTimeMs"`
	AverageMs   int       `json:"averageTimeMs"`
	GamesPlayed int       `json:"gamesPlayed"`
	AccuracyPct int       `json:"accuracyPct"`
	Timestamp   time.Time `json:"timestamp"`
	Rank        int       `json:"rank"`
}

// Rank places a best time within the entries for a game type: one plus
// the number of strictly faster entries. Ties share a rank.
func Rank(gameType game.Type, bestMs int, entries []Entry) int {
	better := 0
	for _, e := range entries {
		if e.GameType == gameType && e.BestMs < bestMs {
			better++
		}
	}
	return better + 1
}

type SubmitResult struct {
	Accepted    bool
	Rank        int
	IsNewRecord bool
}

// Submit applies the personal-best policy: a score is accepted only when
// the player has no entry for the game type yet, or the candidate beats
// their stored best. Every accepted score is a new record, a first entry
// included. A rejected submission still reports the rank the existing
// best holds.
func Submit(candidate Entry, existing *Entry, entries []Entry) SubmitResult {
	if existing != nil && candidate.BestMs >= existing.BestMs {
		return SubmitResult{
			Accepted: false,
			Rank:     Rank(candidate.GameType, existing.BestMs, entries),
		}
	}
	return SubmitResult{
		Accepted:    true,
		Rank:        Rank(candidate.GameType, candidate.BestMs, entries),
		IsNewRecord: true,
	}
}

type SortKey string

const (
	ByBestSpeed   SortKey = "BEST_SPEED"
	ByBestAverage SortKey = "BEST_AVERAGE"
	ByMostGames   SortKey = "MOST_GAMES"
)

// Resort returns a copy of entries ordered by the given key with dense
// positional ranks reassigned. The input slice is left untouched.
func Resort(entries []Entry, key SortKey) []Entry {
	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		switch key {
		case ByBestAverage:
			return out[i].AverageMs < out[j].AverageMs
		case ByMostGames:
			return out[i].GamesPlayed > out[j].GamesPlayed
		default:
			return out[i].BestMs < out[j].BestMs
		}
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
