package redhand

import "time"

// PlayerID is the opaque, stable identity supplied by the session layer.
type PlayerID string

// Phase 游戏阶段
type Phase byte

const (
	PhaseLobby   Phase = 0
	PhaseBetting Phase = 1
	PhaseResults Phase = 2
	PhaseEnded   Phase = 3
)

var PhaseDictionary = map[Phase]string{
	PhaseLobby:   "lobby",
	PhaseBetting: "betting",
	PhaseResults: "results",
	PhaseEnded:   "ended",
}

func (p Phase) String() string {
	if s, ok := PhaseDictionary[p]; ok {
		return s
	}
	return "unknown"
}

// HandRank 手牌等级, 1 (high card) .. 10 (royal flush); 0 means not evaluated.
type HandRank byte

const (
	HandInvalid       HandRank = iota
	HandHighCard               // 高牌
	HandOnePair                // 一对
	HandTwoPair                // 两对
	HandThreeOfKind            // 三条
	HandStraight               // 顺子
	HandFlush                  // 同花
	HandFullHouse              // 葫芦
	HandFourOfKind             // 四条
	HandStraightFlush          // 同花顺
	HandRoyalFlush             // 皇家同花顺
)

var HandRankDictionary = map[HandRank]string{
	HandInvalid:       "Invalid Hand",
	HandHighCard:      "High Card",
	HandOnePair:       "One Pair",
	HandTwoPair:       "Two Pair",
	HandThreeOfKind:   "Three of a Kind",
	HandStraight:      "Straight",
	HandFlush:         "Flush",
	HandFullHouse:     "Full House",
	HandFourOfKind:    "Four of a Kind",
	HandStraightFlush: "Straight Flush",
	HandRoyalFlush:    "Royal Flush",
}

func (r HandRank) String() string {
	if s, ok := HandRankDictionary[r]; ok {
		return s
	}
	return HandRankDictionary[HandInvalid]
}

const (
	HandSize = 5

	// botchOdds is the denominator of the botch roll for a same-rank cheat.
	botchOdds = 24

	// autoBetStep is the granularity of bets placed on a cheater's behalf.
	autoBetStep int64 = 5
)

// Defaults mirrored by config.DefaultConfig.
const (
	DefaultStartingGold         int64         = 100
	DefaultMinimalBet           int64         = 1
	DefaultEliminationBonus     int64         = 10
	DefaultBetIncrementSmall    int64         = 5
	DefaultBetIncrementLarge    int64         = 25
	DefaultBettingPhaseDuration time.Duration = 120 * time.Second
	DefaultMinPlayers                         = 2
)
