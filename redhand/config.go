package redhand

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	// Economy
	StartingGold     int64
	MinimalBet       int64 // ante collected from every dealt player at round start
	EliminationBonus int64

	// Bet controls offered to players; the engine itself accepts any amount.
	BetIncrementSmall int64
	BetIncrementLarge int64

	BettingPhaseDuration time.Duration
	MinPlayers           int

	// Comeback decides what happens to eliminated players who stay attached.
	// nil disables comeback mode.
	Comeback ComebackPolicy

	// Optional
	Logger logrus.FieldLogger
	Now    func() time.Time

	// RNG seed (0 => time-based)
	Seed int64
}

// DefaultConfig returns the standard table settings with comeback enabled.
func DefaultConfig() Config {
	return Config{
		StartingGold:         DefaultStartingGold,
		MinimalBet:           DefaultMinimalBet,
		EliminationBonus:     DefaultEliminationBonus,
		BetIncrementSmall:    DefaultBetIncrementSmall,
		BetIncrementLarge:    DefaultBetIncrementLarge,
		BettingPhaseDuration: DefaultBettingPhaseDuration,
		MinPlayers:           DefaultMinPlayers,
		Comeback:             FixedComeback{Gold: DefaultStartingGold / 2},
	}
}

func (c Config) validate() error {
	if c.StartingGold <= 0 {
		return fmt.Errorf("StartingGold must be > 0")
	}
	if c.MinimalBet < 0 {
		return fmt.Errorf("MinimalBet must be >= 0")
	}
	if c.EliminationBonus < 0 {
		return fmt.Errorf("EliminationBonus must be >= 0")
	}
	if c.BetIncrementSmall < 0 || c.BetIncrementLarge < 0 {
		return fmt.Errorf("invalid bet increments: small=%d large=%d", c.BetIncrementSmall, c.BetIncrementLarge)
	}
	if c.BettingPhaseDuration < 0 {
		return fmt.Errorf("BettingPhaseDuration must be >= 0")
	}
	if c.MinPlayers <= 0 {
		return fmt.Errorf("MinPlayers must be > 0")
	}
	return nil
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (c Config) comeback() ComebackPolicy {
	if c.Comeback == nil {
		return NoComeback{}
	}
	return c.Comeback
}
