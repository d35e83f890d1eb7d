package session

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sprinttap/internal/game"
)

// Store persists finished sessions. The trial engine writes exactly once
// per session, at finalization; it never writes mid-game.
type Store interface {
	SaveSession(s *Session) error
	RecentSessions(limit int) ([]*Session, error)
	// BestSession returns the completed, non-failed session with the
	// lowest best time, or nil when there is none.
	BestSession() (*Session, error)
}

// SQLiteStore keeps session history in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging session db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initTables(); err != nil {
		return nil, err
	}
	log.Printf("[Store] Session store ready at %s\n", path)
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initTables() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS sessions (
            id TEXT PRIMARY KEY,
            game_type TEXT NOT NULL,
            user_id TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            average_ms INTEGER NOT NULL,
            best_ms INTEGER NOT NULL,
            worst_ms INTEGER NOT NULL,
            total_attempts INTEGER NOT NULL,
            valid_attempts INTEGER NOT NULL,
            is_completed INTEGER NOT NULL,
            is_failed INTEGER NOT NULL,
            fail_reason TEXT NOT NULL DEFAULT ''
        )
    `)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	_, err = s.db.Exec(`
        CREATE TABLE IF NOT EXISTS attempts (
            session_id TEXT NOT NULL,
            number INTEGER NOT NULL,
            reaction_ms INTEGER NOT NULL,
            is_valid INTEGER NOT NULL,
            created_at DATETIME NOT NULL,
            PRIMARY KEY (session_id, number)
        )
    `)
	if err != nil {
		return fmt.Errorf("creating attempts table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveSession(sess *Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
        INSERT INTO sessions
            (id, game_type, user_id, created_at, average_ms, best_ms, worst_ms,
             total_attempts, valid_attempts, is_completed, is_failed, fail_reason)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, sess.ID, string(sess.GameType), sess.UserID, sess.Timestamp,
		sess.Statistics.AverageMs, sess.Statistics.BestMs, sess.Statistics.WorstMs,
		sess.Statistics.TotalAttempts, sess.Statistics.ValidAttempts,
		sess.IsCompleted, sess.IsFailed, string(sess.FailReason))
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for _, a := range sess.Attempts {
		_, err = tx.Exec(`
            INSERT INTO attempts (session_id, number, reaction_ms, is_valid, created_at)
            VALUES (?, ?, ?, ?, ?)
        `, sess.ID, a.Number, a.ReactionMs, a.Valid, a.Timestamp)
		if err != nil {
			return fmt.Errorf("inserting attempt %d: %w", a.Number, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) RecentSessions(limit int) ([]*Session, error) {
	rows, err := s.db.Query(`
        SELECT id, game_type, user_id, created_at, average_ms, best_ms, worst_ms,
               total_attempts, valid_attempts, is_completed, is_failed, fail_reason
        FROM sessions
        ORDER BY created_at DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	for _, sess := range sessions {
		if err := s.loadAttempts(sess); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *SQLiteStore) BestSession() (*Session, error) {
	row := s.db.QueryRow(`
        SELECT id, game_type, user_id, created_at, average_ms, best_ms, worst_ms,
               total_attempts, valid_attempts, is_completed, is_failed, fail_reason
        FROM sessions
        WHERE is_completed = 1 AND is_failed = 0
        ORDER BY best_ms ASC
        LIMIT 1
    `)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadAttempts(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*Session, error) {
	var sess Session
	var gameType, failReason string
	err := r.Scan(&sess.ID, &gameType, &sess.UserID, &sess.Timestamp,
		&sess.Statistics.AverageMs, &sess.Statistics.BestMs, &sess.Statistics.WorstMs,
		&sess.Statistics.TotalAttempts, &sess.Statistics.ValidAttempts,
		&sess.IsCompleted, &sess.IsFailed, &failReason)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	sess.GameType = game.Type(gameType)
	sess.FailReason = FailReason(failReason)
	return &sess, nil
}

func (s *SQLiteStore) loadAttempts(sess *Session) error {
	rows, err := s.db.Query(`
        SELECT number, reaction_ms, is_valid, created_at
        FROM attempts
        WHERE session_id = ?
        ORDER BY number
    `, sess.ID)
	if err != nil {
		return fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a game.Attempt
		var ts time.Time
		if err := rows.Scan(&a.Number, &a.ReactionMs, &a.Valid, &ts); err != nil {
			return fmt.Errorf("scanning attempt: %w", err)
		}
		a.Timestamp = ts
		sess.Attempts = append(sess.Attempts, a)
	}
	return rows.Err()
}

var _ Store = (*SQLiteStore)(nil)
