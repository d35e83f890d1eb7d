package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sprinttap/internal/config"
	"sprinttap/internal/db"
	"sprinttap/internal/wshub"
)

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	srv := &Server{
		Hub: wshub.NewHub(),
	}

	// Optional database connection
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			srv.DB = database
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/leaderboard/submit", srv.handleSubmit)
	mux.HandleFunc("GET /v1/leaderboard", srv.handleLeaderboard)
	mux.HandleFunc("GET /v1/leaderboard/user-stats", srv.handleUserStats)
	mux.HandleFunc("GET /v1/leaderboard/live", srv.handleLive)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	addr := "0.0.0.0:" + cfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", cfg.Port)
	return http.ListenAndServe(addr, mux)
}
