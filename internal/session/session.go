package session

import (
	"time"

	"github.com/google/uuid"

	"sprinttap/internal/game"
	"sprinttap/internal/stats"
)

type FailReason string

const (
	FailEarlyTap FailReason = "EARLY_TAP"
	FailTimeout  FailReason = "TIMEOUT"
)

// Session is one complete or aborted sequence of rounds plus its derived
// statistics. Sessions are immutable once created; a replay produces a
// new one.
type Session struct {
	ID          string
	GameType    game.Type
	UserID      string
	Timestamp   time.Time
	Attempts    []game.Attempt
	Statistics  stats.Statistics
	IsCompleted bool
	IsFailed    bool
	FailReason  FailReason
}

// New builds a session from a finished round sequence. A session is
// failed when it recorded no valid attempt or when the subject aborted;
// one valid attempt is enough to count, however many rounds went wrong.
func New(gameType game.Type, userID string, attempts []game.Attempt, completed bool) *Session {
	st := stats.Aggregate(attempts)
	failed := !completed || st.ValidAttempts == 0

	s := &Session{
		ID:          uuid.NewString(),
		GameType:    gameType,
		UserID:      userID,
		Timestamp:   time.Now(),
		Attempts:    append([]game.Attempt(nil), attempts...),
		Statistics:  st,
		IsCompleted: completed,
		IsFailed:    failed,
	}
	if failed {
		s.FailReason = failReasonOf(attempts)
	}
	return s
}

// failReasonOf classifies a failed session by its last recorded attempt:
// a zero reaction time means an early tap, anything else a timeout or an
// implausible response. Aborts before any attempt leave it empty.
func failReasonOf(attempts []game.Attempt) FailReason {
	if len(attempts) == 0 {
		return ""
	}
	last := attempts[len(attempts)-1]
	if last.Valid {
		return ""
	}
	if last.ReactionMs == 0 {
		return FailEarlyTap
	}
	return FailTimeout
}
