package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sprinttap/internal/game"
	"sprinttap/internal/ranking"
)

// Client talks to the leaderboard service over HTTP. When the service is
// unreachable, reads fall back to a synthetic board so the caller always
// has something to show.
type Client struct {
	baseURL  string
	http     *http.Client
	userID   string
	nickname string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// WithIdentity tells the client who is asking, so a degraded board can
// carry stand-in stats for the caller.
func (c *Client) WithIdentity(userID, nickname string) *Client {
	c.userID = userID
	c.nickname = nickname
	return c
}

// SubmitRequest mirrors the service's submit payload.
type SubmitRequest struct {
	UserID      string `json:"userId"`
	Nickname    string `json:"nickname"`
	GameType    string `json:"gameType"`
	BestMs      int    `json:"bestTimeMs"`
	AverageMs   int    `json:"averageTimeMs"`
	GamesPlayed int    `json:"gamesPlayed"`
	AccuracyPct int    `json:"accuracyPct"`
}

type SubmitResponse struct {
	Success     bool   `json:"success"`
	Rank        int    `json:"rank"`
	IsNewRecord bool   `json:"isNewRecord"`
	Message     string `json:"message,omitempty"`
}

// Board is a leaderboard read. Degraded means the entries are synthetic
// stand-ins, not real standings.
type Board struct {
	Entries     []ranking.Entry `json:"entries"`
	UserStats   *ranking.Entry  `json:"userStats,omitempty"`
	TotalUsers  int             `json:"totalUsers"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Degraded    bool            `json:"degraded,omitempty"`
}

// SubmitScore reports a finished game. Unlike reads, submissions have no
// fallback: an unreachable service is an error the caller must see.
func (c *Client) SubmitScore(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding submit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/leaderboard/submit", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submitting score: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("submitting score: service returned %s", resp.Status)
	}

	var out SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding submit response: %w", err)
	}
	return &out, nil
}

// GetLeaderboard fetches the board for a game type. On any transport or
// service failure it returns a synthetic degraded board instead of an
// error.
func (c *Client) GetLeaderboard(ctx context.Context, gameType game.Type, limit int) (*Board, error) {
	q := url.Values{}
	q.Set("gameType", string(gameType))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/leaderboard?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building leaderboard request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Printf("[Leaderboard] Service unreachable, serving synthetic board: %v\n", err)
		return c.syntheticBoard(gameType, limit), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Leaderboard] Service returned %s, serving synthetic board\n", resp.Status)
		return c.syntheticBoard(gameType, limit), nil
	}

	var board Board
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, fmt.Errorf("decoding leaderboard: %w", err)
	}
	return &board, nil
}

func (c *Client) syntheticBoard(gameType game.Type, limit int) *Board {
	n := 10
	if limit > 0 && limit < n {
		n = limit
	}
	var userStats *ranking.Entry
	if c.nickname != "" {
		userStats = ranking.SyntheticUserStats(c.userID, c.nickname, gameType)
	}
	return &Board{
		Entries:     ranking.Synthetic(gameType, n),
		UserStats:   userStats,
		TotalUsers:  ranking.SyntheticTotalUsers,
		LastUpdated: time.Now(),
		Degraded:    true,
	}
}

// UserStats returns the caller's stored entry with its current rank, or
// nil when the player has never been ranked.
func (c *Client) UserStats(ctx context.Context, userID string, gameType game.Type) (*ranking.Entry, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("gameType", string(gameType))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/leaderboard/user-stats?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building user-stats request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching user stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching user stats: service returned %s", resp.Status)
	}

	var entry ranking.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("decoding user stats: %w", err)
	}
	return &entry, nil
}

// HealthCheck reports whether the service answers at all.
func (c *Client) HealthCheck(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
