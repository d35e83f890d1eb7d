package ranking

import (
	"testing"

	"sprinttap/internal/game"
)

func boardOf(times ...int) []Entry {
	var entries []Entry
	for i, ms := range times {
		entries = append(entries, Entry{
			UserID:   "user",
			GameType: game.TapTest,
			BestMs:   ms,
		})
		entries[i].Rank = i + 1
	}
	return entries
}

func TestRank(t *testing.T) {
	entries := boardOf(200, 250, 250, 300)

	tests := []struct {
		name   string
		bestMs int
		want   int
	}{
		{"faster than everyone", 150, 1},
		{"ties share a rank", 250, 2},
		{"slower than everyone", 400, 5},
		{"empty board", 250, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := entries
			if tt.name == "empty board" {
				board = nil
			}
			if got := Rank(game.TapTest, tt.bestMs, board); got != tt.want {
				t.Errorf("Rank(%d) = %d, want %d", tt.bestMs, got, tt.want)
			}
		})
	}
}

func TestRank_IgnoresOtherGameTypes(t *testing.T) {
	entries := []Entry{
		{GameType: game.TapTest, BestMs: 100},
		{GameType: game.AudioTest, BestMs: 100},
	}
	if got := Rank(game.TapTest, 200, entries); got != 2 {
		t.Errorf("Rank() = %d, want 2 counting only matching game type", got)
	}
}

func TestSubmit_FirstScoreAccepted(t *testing.T) {
	candidate := Entry{GameType: game.TapTest, BestMs: 250}

	got := Submit(candidate, nil, boardOf(200, 300))
	if !got.Accepted {
		t.Fatal("first submission for a game type must be accepted")
	}
	if got.Rank != 2 {
		t.Errorf("Rank = %d, want 2", got.Rank)
	}
	if !got.IsNewRecord {
		t.Error("a first accepted score counts as a new record")
	}
}

func TestSubmit_EveryAcceptedScoreIsNewRecord(t *testing.T) {
	tests := []struct {
		name     string
		existing *Entry
	}{
		{"no prior entry", nil},
		{"beats prior entry", &Entry{GameType: game.TapTest, BestMs: 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Submit(Entry{GameType: game.TapTest, BestMs: 250}, tt.existing, nil)
			if !got.Accepted || !got.IsNewRecord {
				t.Errorf("Submit() = %+v, want accepted new record", got)
			}
		})
	}
}

func TestSubmit_PersonalBestAccepted(t *testing.T) {
	existing := Entry{GameType: game.TapTest, BestMs: 300}
	candidate := Entry{GameType: game.TapTest, BestMs: 250}

	got := Submit(candidate, &existing, boardOf(200, 300))
	if !got.Accepted || !got.IsNewRecord {
		t.Errorf("Submit() = %+v, want accepted new record", got)
	}
}

func TestSubmit_SlowerScoreRejected(t *testing.T) {
	existing := Entry{GameType: game.TapTest, BestMs: 220}
	candidate := Entry{GameType: game.TapTest, BestMs: 280}

	got := Submit(candidate, &existing, boardOf(200, 220, 300))
	if got.Accepted {
		t.Fatal("a slower score must not replace the stored best")
	}
	if got.Rank != 2 {
		t.Errorf("Rank = %d, want rank of the existing best (2)", got.Rank)
	}
}

func TestSubmit_EqualScoreRejected(t *testing.T) {
	existing := Entry{GameType: game.TapTest, BestMs: 250}
	candidate := Entry{GameType: game.TapTest, BestMs: 250}

	if got := Submit(candidate, &existing, nil); got.Accepted {
		t.Error("matching the stored best is not an improvement")
	}
}

func TestResort(t *testing.T) {
	entries := []Entry{
		{UserID: "a", BestMs: 300, AverageMs: 310, GamesPlayed: 50},
		{UserID: "b", BestMs: 200, AverageMs: 400, GamesPlayed: 10},
		{UserID: "c", BestMs: 250, AverageMs: 260, GamesPlayed: 30},
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{ByBestSpeed, []string{"b", "c", "a"}},
		{ByBestAverage, []string{"c", "a", "b"}},
		{ByMostGames, []string{"a", "c", "b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := Resort(entries, tt.key)
			for i, want := range tt.want {
				if got[i].UserID != want {
					t.Errorf("position %d = %s, want %s", i+1, got[i].UserID, want)
				}
				if got[i].Rank != i+1 {
					t.Errorf("rank at position %d = %d, want %d", i, got[i].Rank, i+1)
				}
			}
		})
	}
}

func TestResort_DoesNotMutateInput(t *testing.T) {
	entries := []Entry{
		{UserID: "a", BestMs: 300},
		{UserID: "b", BestMs: 200},
	}
	Resort(entries, ByBestSpeed)
	if entries[0].UserID != "a" {
		t.Error("Resort must sort a copy, not the caller's slice")
	}
}

func TestSynthetic(t *testing.T) {
	entries := Synthetic(game.TapTest, 10)
	if len(entries) != 10 {
		t.Fatalf("Synthetic(10) returned %d entries", len(entries))
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("entry %d rank = %d, want %d", i, e.Rank, i+1)
		}
		if e.GameType != game.TapTest {
			t.Errorf("entry %d game type = %s", i, e.GameType)
		}
		if e.BestMs < 200+i*50 || e.BestMs >= 300+i*50 {
			t.Errorf("entry %d best %dms outside expected band", i, e.BestMs)
		}
		if e.AccuracyPct < 70 || e.AccuracyPct > 99 {
			t.Errorf("entry %d accuracy = %d%%, want 70-99", i, e.AccuracyPct)
		}
		if e.Nickname == "" || e.ID == "" {
			t.Errorf("entry %d missing identity fields: %+v", i, e)
		}
	}
}

func TestSyntheticUserStats(t *testing.T) {
	got := SyntheticUserStats("user-1", "Alice", game.TapTest)

	if got.UserID != "user-1" || got.Nickname != "Alice" {
		t.Errorf("identity = %s/%s, want user-1/Alice", got.UserID, got.Nickname)
	}
	if got.GameType != game.TapTest {
		t.Errorf("game type = %s, want %s", got.GameType, game.TapTest)
	}
	if got.BestMs != 380 || got.AverageMs != 420 || got.Rank != 25 {
		t.Errorf("stand-in values = %+v, want best 380, average 420, rank 25", got)
	}
}
