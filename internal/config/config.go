// Package config loads server settings from the environment, an optional
// .env file and an optional JSON game file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"redhanded/redhand"
)

const (
	LedgerModeMemory   = "memory"
	LedgerModeSQLite   = "sqlite"
	LedgerModePostgres = "postgres"
)

type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string // json or text

	LedgerMode  string
	SQLitePath  string
	DatabaseURL string

	RoomIdleTimeout time.Duration
	MaxRooms        int
	PersonasFile    string

	Game     GameConfig
	Messages Messages
}

// GameConfig holds the table constants. JSON names follow the game file.
type GameConfig struct {
	StartingGold         int64 `json:"startingGold"`
	BettingPhaseDuration int   `json:"bettingPhaseDuration"` // seconds
	MinimalBet           int64 `json:"minimalBet"`
	BetIncrementSmall    int64 `json:"betIncrementSmall"`
	BetIncrementLarge    int64 `json:"betIncrementLarge"`
	EliminationBonus     int64 `json:"eliminationBonus"`
	MinPlayers           int   `json:"minPlayers"`
	ComebackEnabled      bool  `json:"comebackEnabled"`
	ComebackGold         int64 `json:"comebackGold"`
}

func DefaultGameConfig() GameConfig {
	return GameConfig{
		StartingGold:         redhand.DefaultStartingGold,
		BettingPhaseDuration: int(redhand.DefaultBettingPhaseDuration / time.Second),
		MinimalBet:           redhand.DefaultMinimalBet,
		BetIncrementSmall:    redhand.DefaultBetIncrementSmall,
		BetIncrementLarge:    redhand.DefaultBetIncrementLarge,
		EliminationBonus:     redhand.DefaultEliminationBonus,
		MinPlayers:           redhand.DefaultMinPlayers,
		ComebackEnabled:      true,
		ComebackGold:         redhand.DefaultStartingGold / 2,
	}
}

// EngineConfig converts the table constants for redhand.NewGame.
func (g GameConfig) EngineConfig() redhand.Config {
	cfg := redhand.Config{
		StartingGold:         g.StartingGold,
		MinimalBet:           g.MinimalBet,
		EliminationBonus:     g.EliminationBonus,
		BetIncrementSmall:    g.BetIncrementSmall,
		BetIncrementLarge:    g.BetIncrementLarge,
		BettingPhaseDuration: time.Duration(g.BettingPhaseDuration) * time.Second,
		MinPlayers:           g.MinPlayers,
	}
	if g.ComebackEnabled {
		cfg.Comeback = redhand.FixedComeback{Gold: g.ComebackGold}
	}
	return cfg
}

// gameFile is the JSON shape of GAME_CONFIG_FILE. Absent keys keep the
// current values.
type gameFile struct {
	Game     *GameConfig `json:"game"`
	Messages *Messages   `json:"messages"`
}

// Load reads .env (if present), the environment and GAME_CONFIG_FILE.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:            envOrDefault("ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		LedgerMode:      ledgerModeFromEnv(),
		SQLitePath:      envOrDefault("LEDGER_SQLITE_PATH", "data/redhanded.db"),
		DatabaseURL:     envOrDefault("DATABASE_URL", ""),
		RoomIdleTimeout: envDurationOrDefault("ROOM_IDLE_TIMEOUT", 30*time.Minute),
		MaxRooms:        envIntOrDefault("MAX_ROOMS", 100),
		PersonasFile:    envOrDefault("NPC_PERSONAS_FILE", ""),
		Game:            DefaultGameConfig(),
		Messages:        DefaultMessages(),
	}

	g := &cfg.Game
	g.StartingGold = envInt64OrDefault("STARTING_GOLD", g.StartingGold)
	g.BettingPhaseDuration = envIntOrDefault("BETTING_PHASE_DURATION", g.BettingPhaseDuration)
	g.MinimalBet = envInt64OrDefault("MINIMAL_BET", g.MinimalBet)
	g.BetIncrementSmall = envInt64OrDefault("BET_INCREMENT_SMALL", g.BetIncrementSmall)
	g.BetIncrementLarge = envInt64OrDefault("BET_INCREMENT_LARGE", g.BetIncrementLarge)
	g.EliminationBonus = envInt64OrDefault("ELIMINATION_BONUS", g.EliminationBonus)
	g.MinPlayers = envIntOrDefault("MIN_PLAYERS", g.MinPlayers)
	g.ComebackEnabled = envBoolOrDefault("COMEBACK_ENABLED", g.ComebackEnabled)
	g.ComebackGold = envInt64OrDefault("COMEBACK_GOLD", g.ComebackGold)

	if path := strings.TrimSpace(os.Getenv("GAME_CONFIG_FILE")); path != "" {
		if err := cfg.LoadGameFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadGameFile overlays game constants and messages from a JSON file.
func (c *Config) LoadGameFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read game config: %w", err)
	}
	// decode into the current values so missing keys keep them
	file := gameFile{Game: &c.Game, Messages: &c.Messages}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("unmarshal game config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.LedgerMode {
	case LedgerModeMemory, LedgerModeSQLite, LedgerModePostgres:
	default:
		return fmt.Errorf("invalid LEDGER_MODE %q (supported: %s, %s, %s)",
			c.LedgerMode, LedgerModeMemory, LedgerModeSQLite, LedgerModePostgres)
	}
	if c.Game.StartingGold <= 0 || c.Game.MinimalBet < 0 || c.Game.MinPlayers < 1 {
		return fmt.Errorf("invalid game config: %+v", c.Game)
	}
	return nil
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func ledgerModeFromEnv() string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("LEDGER_MODE")))
	switch raw {
	case "", LedgerModeMemory, "mem", "noop":
		return LedgerModeMemory
	case LedgerModeSQLite, "local":
		return LedgerModeSQLite
	case LedgerModePostgres, "postgresql", "db":
		return LedgerModePostgres
	default:
		return raw
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envInt64OrDefault(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// envDurationOrDefault accepts Go durations ("90s") or bare seconds ("90").
func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envBoolOrDefault(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return fallback
}
