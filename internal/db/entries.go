package db

import (
	"database/sql"
	"fmt"
	"time"

	"sprinttap/internal/game"
	"sprinttap/internal/ranking"
)

// GetEntry returns a player's stored best for a game type, or nil when
// they have never been ranked.
func (d *DB) GetEntry(userID string, gameType game.Type) (*ranking.Entry, error) {
	var e ranking.Entry
	var gt string
	err := d.conn.QueryRow(`
		SELECT id, user_id, nickname, game_type, best_ms, average_ms,
		       games_played, accuracy_pct, achieved_at
		FROM leaderboard_entries
		WHERE user_id = $1 AND game_type = $2
	`, userID, string(gameType)).Scan(&e.ID, &e.UserID, &e.Nickname, &gt,
		&e.BestMs, &e.AverageMs, &e.GamesPlayed, &e.AccuracyPct, &e.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard entry: %w", err)
	}
	e.GameType = game.Type(gt)
	return &e, nil
}

// UpsertEntry stores a new personal best, replacing any previous entry
// for the same player and game type. GamesPlayed always increments on
// the stored row regardless of whether the best time changed.
func (d *DB) UpsertEntry(e ranking.Entry) error {
	_, err := d.conn.Exec(`
		INSERT INTO leaderboard_entries
			(id, user_id, nickname, game_type, best_ms, average_ms,
			 games_played, accuracy_pct, achieved_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (user_id, game_type) DO UPDATE SET
			nickname = $3,
			best_ms = $5,
			average_ms = $6,
			games_played = leaderboard_entries.games_played + 1,
			accuracy_pct = $8,
			achieved_at = $9,
			updated_at = now()
	`, e.ID, e.UserID, e.Nickname, string(e.GameType), e.BestMs, e.AverageMs,
		e.GamesPlayed, e.AccuracyPct, e.Timestamp)
	if err != nil {
		return fmt.Errorf("upserting leaderboard entry: %w", err)
	}
	return nil
}

// TouchEntry bumps the games-played counter for a score that did not
// beat the stored best.
func (d *DB) TouchEntry(userID string, gameType game.Type) error {
	_, err := d.conn.Exec(`
		UPDATE leaderboard_entries
		SET games_played = games_played + 1, updated_at = now()
		WHERE user_id = $1 AND game_type = $2
	`, userID, string(gameType))
	if err != nil {
		return fmt.Errorf("touching leaderboard entry: %w", err)
	}
	return nil
}

// ListEntries returns the board for a game type ordered fastest first,
// with positional ranks assigned. limit <= 0 returns everything.
func (d *DB) ListEntries(gameType game.Type, limit int) ([]ranking.Entry, error) {
	query := `
		SELECT id, user_id, nickname, game_type, best_ms, average_ms,
		       games_played, accuracy_pct, achieved_at
		FROM leaderboard_entries
		WHERE game_type = $1
		ORDER BY best_ms ASC, achieved_at ASC
	`
	args := []any{string(gameType)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing leaderboard entries: %w", err)
	}
	defer rows.Close()

	var entries []ranking.Entry
	for rows.Next() {
		var e ranking.Entry
		var gt string
		var achievedAt time.Time
		err := rows.Scan(&e.ID, &e.UserID, &e.Nickname, &gt, &e.BestMs,
			&e.AverageMs, &e.GamesPlayed, &e.AccuracyPct, &achievedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		e.GameType = game.Type(gt)
		e.Timestamp = achievedAt
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountBetter counts entries strictly faster than the given best time.
func (d *DB) CountBetter(gameType game.Type, bestMs int) (int, error) {
	var count int
	err := d.conn.QueryRow(`
		SELECT COUNT(*) FROM leaderboard_entries
		WHERE game_type = $1 AND best_ms < $2
	`, string(gameType), bestMs).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting faster entries: %w", err)
	}
	return count, nil
}

func (d *DB) TotalUsers(gameType game.Type) (int, error) {
	var count int
	err := d.conn.QueryRow(`
		SELECT COUNT(*) FROM leaderboard_entries WHERE game_type = $1
	`, string(gameType)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting leaderboard users: %w", err)
	}
	return count, nil
}
