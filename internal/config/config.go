package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	SessionDBPath  string
	LeaderboardURL string
	Game           Game
}

// Game holds the trial timing options. All values are read-only inputs;
// nothing mutates them at runtime.
type Game struct {
	TotalRounds        int
	MinWaitMs          int // lower bound of the random stimulus delay
	MaxWaitMs          int // upper bound of the random stimulus delay
	CountdownMs        int
	ReadyTimeoutMs     int // how long the subject has to tap after the stimulus
	RoundDelayMs       int
	ResultDisplayMs    int
	HumanMinReactionMs int
	HumanMaxReactionMs int
}

func DefaultGame() Game {
	return Game{
		TotalRounds:        3,
		MinWaitMs:          1000,
		MaxWaitMs:          3000,
		CountdownMs:        3000,
		ReadyTimeoutMs:     2000,
		RoundDelayMs:       500,
		ResultDisplayMs:    800,
		HumanMinReactionMs: 100,
		HumanMaxReactionMs: 2000,
	}
}

// Validate rejects inconsistent timing bounds up front, so a bad
// configuration fails at load instead of mid-trial.
func (g Game) Validate() error {
	if g.TotalRounds < 1 {
		return fmt.Errorf("total rounds must be at least 1, got %d", g.TotalRounds)
	}
	if g.MinWaitMs < 0 || g.MinWaitMs > g.MaxWaitMs {
		return fmt.Errorf("wait bounds invalid: min %dms, max %dms", g.MinWaitMs, g.MaxWaitMs)
	}
	if g.ReadyTimeoutMs <= 0 {
		return fmt.Errorf("ready timeout must be positive, got %dms", g.ReadyTimeoutMs)
	}
	if g.HumanMinReactionMs < 0 || g.HumanMinReactionMs > g.HumanMaxReactionMs {
		return fmt.Errorf("human reaction bounds invalid: min %dms, max %dms", g.HumanMinReactionMs, g.HumanMaxReactionMs)
	}
	if g.CountdownMs < 0 || g.RoundDelayMs < 0 || g.ResultDisplayMs < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

func Load() (Config, error) {
	game := Game{
		TotalRounds:        getEnvInt("TOTAL_ROUNDS", 3),
		MinWaitMs:          getEnvInt("MIN_WAIT_MS", 1000),
		MaxWaitMs:          getEnvInt("MAX_WAIT_MS", 3000),
		CountdownMs:        getEnvInt("COUNTDOWN_MS", 3000),
		ReadyTimeoutMs:     getEnvInt("READY_TIMEOUT_MS", 2000),
		RoundDelayMs:       getEnvInt("ROUND_DELAY_MS", 500),
		ResultDisplayMs:    getEnvInt("RESULT_DISPLAY_MS", 800),
		HumanMinReactionMs: getEnvInt("HUMAN_MIN_REACTION_MS", 100),
		HumanMaxReactionMs: getEnvInt("HUMAN_MAX_REACTION_MS", 2000),
	}
	if err := game.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid game config: %w", err)
	}

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionDBPath:  getEnv("SESSION_DB_PATH", "sprinttap.db"),
		LeaderboardURL: os.Getenv("LEADERBOARD_URL"),
		Game:           game,
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
