package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"sprinttap/internal/db"
	"sprinttap/internal/game"
	"sprinttap/internal/ranking"
	"sprinttap/internal/wshub"
)

type Server struct {
	DB  *db.DB // nil if no database configured
	Hub *wshub.Hub
}

// SubmitRequest is a finished game's score as the client reports it.
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

// BoardResponse is the full leaderboard payload. UserStats is present
// only when the request named a ranked userId. Degraded marks a
// synthetic board served while the database is unavailable.
type BoardResponse struct {
	Entries     []ranking.Entry `json:"entries"`
	UserStats   *ranking.Entry  `json:"userStats,omitempty"`
	TotalUsers  int             `json:"totalUsers"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Degraded    bool            `json:"degraded,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handle] Encode error: %v\n", err)
	}
}

// candidateOf builds the entry a submission proposes. Clients report
// their local games-played count; one missing from the payload counts as
// the single game being reported.
func candidateOf(req SubmitRequest) ranking.Entry {
	gamesPlayed := req.GamesPlayed
	if gamesPlayed < 1 {
		gamesPlayed = 1
	}
	return ranking.Entry{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Nickname:    req.Nickname,
		GameType:    game.Type(req.GameType),
		BestMs:      req.BestMs,
		AverageMs:   req.AverageMs,
		GamesPlayed: gamesPlayed,
		AccuracyPct: req.AccuracyPct,
		Timestamp:   time.Now(),
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.GameType == "" || req.BestMs <= 0 {
		http.Error(w, "userId, gameType and a positive bestTimeMs are required", http.StatusBadRequest)
		return
	}
	if s.DB == nil {
		http.Error(w, "Leaderboard storage unavailable", http.StatusServiceUnavailable)
		return
	}

	gameType := game.Type(req.GameType)
	existing, err := s.DB.GetEntry(req.UserID, gameType)
	if err != nil {
		log.Printf("[Handle:Submit] GetEntry error: %v\n", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	entries, err := s.DB.ListEntries(gameType, 0)
	if err != nil {
		log.Printf("[Handle:Submit] ListEntries error: %v\n", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	candidate := candidateOf(req)

	result := ranking.Submit(candidate, existing, entries)
	if !result.Accepted {
		if err := s.DB.TouchEntry(req.UserID, gameType); err != nil {
			log.Printf("[Handle:Submit] TouchEntry error: %v\n", err)
		}
		submissionsTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusOK, SubmitResponse{
			Success: false,
			Rank:    result.Rank,
			Message: "Not a new personal best",
		})
		return
	}

	if err := s.DB.UpsertEntry(candidate); err != nil {
		log.Printf("[Handle:Submit] UpsertEntry error: %v\n", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	submissionsTotal.WithLabelValues("accepted").Inc()
	submittedBestMs.Observe(float64(req.BestMs))
	log.Printf("[Handle:Submit] %s ranked %d with %dms\n", req.UserID, result.Rank, req.BestMs)

	s.Hub.Broadcast(wshub.RecordMessage{
		Type:     "record",
		Nickname: req.Nickname,
		GameType: req.GameType,
		BestMs:   req.BestMs,
		Rank:     result.Rank,
	})

	writeJSON(w, http.StatusOK, SubmitResponse{
		Success:     true,
		Rank:        result.Rank,
		IsNewRecord: result.IsNewRecord,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	boardRequests.Inc()

	gameType := game.Type(r.URL.Query().Get("gameType"))
	if gameType == "" {
		gameType = game.TapTest
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	if s.DB == nil {
		writeJSON(w, http.StatusOK, BoardResponse{
			Entries:     ranking.Synthetic(gameType, min(limit, 10)),
			TotalUsers:  ranking.SyntheticTotalUsers,
			LastUpdated: time.Now(),
			Degraded:    true,
		})
		return
	}

	entries, err := s.DB.ListEntries(gameType, limit)
	if err != nil {
		log.Printf("[Handle:Leaderboard] ListEntries error: %v\n", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	total, err := s.DB.TotalUsers(gameType)
	if err != nil {
		log.Printf("[Handle:Leaderboard] TotalUsers error: %v\n", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []ranking.Entry{}
	}

	var userStats *ranking.Entry
	if userID := r.URL.Query().Get("userId"); userID != "" {
		entry, err := s.DB.GetEntry(userID, gameType)
		if err != nil {
			log.Printf("[Handle:Leaderboard] GetEntry error: %v\n", err)
		} else if entry != nil {
			better, err := s.DB.CountBetter(gameType, entry.BestMs)
			if err == nil {
				entry.Rank = better + 1
				userStats = entry
			}
		}
	}

	writeJSON(w, http.StatusOK, BoardResponse{
		Entries:     entries,
		UserStats:   userStats,
		TotalUsers:  total,
		LastUpdated: time.Now(),
	})
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	gameType := game.Type(r.URL.Query().Get("gameType"))
	if gameType == "" {
		gameType = game.TapTest
	}
	if s.DB == nil {
		http.Error(w, "Leaderboard storage unavailable", http.StatusServiceUnavailable)
		return
	}

	entry, err := s.DB.GetEntry(userID, gameType)
	if err != nil {
		log.Printf("[Handle:UserStats] GetEntry error: %v\n", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if entry == nil {
		http.Error(w, "No entry for user", http.StatusNotFound)
		return
	}

	better, err := s.DB.CountBetter(gameType, entry.BestMs)
	if err != nil {
		log.Printf("[Handle:UserStats] CountBetter error: %v\n", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	entry.Rank = better + 1

	writeJSON(w, http.StatusOK, entry)
}

// handleLive upgrades to a WebSocket and streams new-record
// announcements until the client goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[Handle:Live] Accept error: %v\n", err)
		return
	}

	client := &wshub.Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	s.Hub.Register(client)
	log.Printf("[Handle:Live] Client %s connected\n", client.ID)

	ctx := r.Context()
	go client.WritePump(ctx)

	// Reads are discarded; the socket exists only to detect disconnects.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	s.Hub.Unregister(client.ID)
	conn.Close(websocket.StatusNormalClosure, "")
	log.Printf("[Handle:Live] Client %s disconnected\n", client.ID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "not configured"}
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status["database"] = "unreachable"
		} else {
			status["database"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, status)
}
