package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"sprinttap/internal/config"
	"sprinttap/internal/events"
	"sprinttap/internal/game"
	"sprinttap/internal/history"
	"sprinttap/internal/leaderboard"
	"sprinttap/internal/session"
	"sprinttap/internal/stats"
)

var insightMessages = map[string]string{
	"playMore":      "Play a few more games to unlock your trends.",
	"improved":      "You improved by %d%% over your recent games.",
	"declined":      "You slowed down by %d%% over your recent games.",
	"stable":        "Your reaction times are holding steady.",
	"consistent":    "Very consistent round times. Nice.",
	"inconsistent":  "Your round times are all over the place.",
	"excellent":     "Excellent reflexes. Sub-250ms average.",
	"needsPractice": "Averaging over 500ms. Keep practicing.",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err.Error())
	}

	var store session.Store
	if sqlStore, err := session.OpenSQLite(cfg.SessionDBPath); err != nil {
		log.Printf("[Store] Unavailable, history disabled: %v\n", err)
	} else {
		store = sqlStore
		defer sqlStore.Close()
	}

	userID := os.Getenv("PLAYER_ID")
	if userID == "" {
		userID = uuid.NewString()
	}

	done := make(chan *session.Session, 1)
	bus := events.NewBus()

	machine, err := game.NewMachine(cfg.Game, bus, func(attempts []game.Attempt, completed bool) {
		sess := session.New(game.TapTest, userID, attempts, completed)
		if store != nil {
			if err := store.SaveSession(sess); err != nil {
				log.Printf("[Store] Save failed, continuing: %v\n", err)
			}
		}
		done <- sess
	})
	if err != nil {
		log.Fatal(err.Error())
	}

	go printPrompts(bus)
	go readTaps(machine)

	fmt.Printf("Reaction trainer: %d rounds. Press Enter when the prompt says TAP.\n", cfg.Game.TotalRounds)
	machine.Start()

	sess := <-done
	printResults(sess)

	if store != nil {
		printHistory(store)
	}
	if cfg.LeaderboardURL != "" && !sess.IsFailed {
		submitScore(cfg.LeaderboardURL, sess)
	}
}

// readTaps turns each Enter press into a tap event. Stale presses are
// harmless; the machine ignores taps outside the reactive phases.
func readTaps(m *game.Machine) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		m.Tap()
	}
	m.Stop()
}

func printPrompts(bus *events.Bus) {
	for {
		select {
		case ev := <-bus.StateChanges:
			switch game.State(ev.State) {
			case game.StateCountdown:
				fmt.Println("Get ready...")
			case game.StateWaiting:
				fmt.Println("Wait for it...")
			case game.StateReady:
				fmt.Println(">>> TAP NOW <<<")
			}
		case ev := <-bus.RoundResults:
			if !ev.Valid && ev.ReactionMs == 0 {
				fmt.Printf("Round %d: too early!\n", ev.Number)
			} else if !ev.Valid {
				fmt.Printf("Round %d: too slow (%dms)\n", ev.Number, ev.ReactionMs)
			} else {
				fmt.Printf("Round %d: %dms\n", ev.Number, ev.ReactionMs)
			}
		}
	}
}

func printResults(sess *session.Session) {
	fmt.Println()
	if sess.IsFailed {
		fmt.Println("Game over: no valid rounds this time.")
		return
	}
	fmt.Printf("Average: %dms  Best: %dms  Worst: %dms  (%d/%d valid)\n",
		sess.Statistics.AverageMs, sess.Statistics.BestMs, sess.Statistics.WorstMs,
		sess.Statistics.ValidAttempts, sess.Statistics.TotalAttempts)

	fmt.Printf("Rating: %s\n", stats.Rate(sess.Statistics.AverageMs, sess.Statistics.ValidAttempts))

	consistency := history.ConsistencyOf(sess.Attempts)
	fmt.Printf("Consistency: %d/100 (%s)\n", consistency.Score, consistency.Rating)
}

func printHistory(store session.Store) {
	sessions, err := store.RecentSessions(20)
	if err != nil {
		log.Printf("[Store] Reading history: %v\n", err)
		return
	}

	fmt.Println()
	for _, in := range history.Insights(sessions) {
		msg, ok := insightMessages[in.Key]
		if !ok {
			continue
		}
		if pct, has := in.Params["percentage"]; has {
			fmt.Printf(msg+"\n", pct)
		} else {
			fmt.Println(msg)
		}
	}

	sum := history.Summarize(sessions)
	if sum.CompletedGames > 0 {
		fmt.Printf("All time: %d games, best %dms, average %dms, %d%% completed\n",
			sum.TotalGames, sum.BestMs, sum.AverageMs, sum.SuccessRatePct)
	}
}

func submitScore(baseURL string, sess *session.Session) {
	ctx := context.Background()

	nickname := os.Getenv("PLAYER_NICKNAME")
	if nickname == "" {
		nickname = "Anonymous"
	}
	client := leaderboard.NewClient(baseURL).WithIdentity(sess.UserID, nickname)

	resp, err := client.SubmitScore(ctx, leaderboard.SubmitRequest{
		UserID:      sess.UserID,
		Nickname:    nickname,
		GameType:    string(sess.GameType),
		BestMs:      sess.Statistics.BestMs,
		AverageMs:   sess.Statistics.AverageMs,
		GamesPlayed: 1,
		AccuracyPct: stats.Accuracy(sess.Attempts),
	})
	if err != nil {
		log.Printf("[Leaderboard] Submit failed: %v\n", err)
		return
	}

	fmt.Println()
	if resp.Success {
		fmt.Printf("Leaderboard: rank #%d", resp.Rank)
		if resp.IsNewRecord {
			fmt.Print(" (new personal best!)")
		}
		fmt.Println()
	} else {
		fmt.Printf("Leaderboard: your best still stands at rank #%d\n", resp.Rank)
	}

	board, err := client.GetLeaderboard(ctx, sess.GameType, 10)
	if err != nil {
		log.Printf("[Leaderboard] Fetch failed: %v\n", err)
		return
	}
	if board.Degraded {
		fmt.Println("(leaderboard offline, showing sample standings)")
	}
	for _, e := range board.Entries {
		fmt.Printf("%3d. %-16s %4dms\n", e.Rank, e.Nickname, e.BestMs)
	}
}
