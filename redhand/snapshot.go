package redhand

import (
	"time"

	"redhanded/card"
)

type PlayerSnapshot struct {
	ID       PlayerID
	Name     string
	Attached bool

	Hand     []card.Card
	Gold     int64
	Bet      int64
	Ante     int64
	Wagered  int64
	Folded   bool
	HandRank HandRank
	HandName string

	Cheated                   bool
	AccusedOfCheating         bool
	WronglyAccused            bool
	ReceivedRedistributedGold bool
	ChangedCards              bool
	RefreshCount              int
	BotchedCheating           bool
	Eliminated                bool
	ReceivedEliminationBonus  bool

	MugVictim    PlayerID
	HasMugged    bool
	MugFailed    bool
	MuggedAmount int64

	InComebackMode           bool
	ComebackPrediction       PlayerID
	HasComebackPrediction    bool
	JustReturnedFromComeback bool
	FailedComebackPrediction bool
	AllPlayersFolded         bool

	// CheatTip is set for players who lost the previous round.
	CheatTip bool
}

type Suspicion struct {
	Suspect  PlayerID
	Accusers []PlayerID
}

type Snapshot struct {
	Phase   Phase
	Round   int
	Pot     int64
	Winners []PlayerID

	BettingStartedAt time.Time
	BettingDeadline  time.Time

	PunishmentUsedThisRound bool
	SuspectedCheaters       []Suspicion
	LosingPlayersLastRound  []PlayerID
	WorstPerformerLastRound PlayerID

	NumDecks int
	PoolSize int

	MinimalBet        int64
	BetIncrementSmall int64
	BetIncrementLarge int64

	Players []PlayerSnapshot
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Phase:                   g.phase,
		Round:                   g.round,
		Pot:                     g.pot.amount,
		Winners:                 append([]PlayerID(nil), g.winners...),
		BettingStartedAt:        g.bettingStartedAt,
		PunishmentUsedThisRound: g.punishmentUsed,
		LosingPlayersLastRound:  append([]PlayerID(nil), g.losersLastRound...),
		WorstPerformerLastRound: g.worstLastRound,
		MinimalBet:              g.cfg.MinimalBet,
		BetIncrementSmall:       g.cfg.BetIncrementSmall,
		BetIncrementLarge:       g.cfg.BetIncrementLarge,
	}
	if g.phase == PhaseBetting && g.cfg.BettingPhaseDuration > 0 {
		s.BettingDeadline = g.bettingStartedAt.Add(g.cfg.BettingPhaseDuration)
	}
	if g.pool != nil {
		s.NumDecks = g.pool.NumDecks()
		s.PoolSize = g.pool.Len()
	}
	for _, id := range g.suspectOrder {
		s.SuspectedCheaters = append(s.SuspectedCheaters, Suspicion{
			Suspect:  id,
			Accusers: append([]PlayerID(nil), g.suspicions[id]...),
		})
	}
	for _, p := range g.orderedLocked() {
		s.Players = append(s.Players, g.snapshotPlayerLocked(p))
	}
	return s
}

// Player returns a copy of one player's record.
func (g *Game) Player(id PlayerID) (PlayerSnapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return PlayerSnapshot{}, false
	}
	return g.snapshotPlayerLocked(p), true
}

func (g *Game) snapshotPlayerLocked(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ID:                        p.id,
		Name:                      p.name,
		Attached:                  p.attached,
		Hand:                      append([]card.Card(nil), p.hand...),
		Gold:                      p.gold,
		Bet:                       p.bet,
		Ante:                      p.ante,
		Wagered:                   p.wagered(),
		Folded:                    p.folded,
		HandRank:                  p.handEval.Rank,
		HandName:                  p.handEval.Name,
		Cheated:                   p.cheated,
		AccusedOfCheating:         p.accused,
		WronglyAccused:            p.wronglyAccused,
		ReceivedRedistributedGold: p.receivedRedistributed,
		ChangedCards:              p.changedCards,
		RefreshCount:              p.refreshCount,
		BotchedCheating:           p.botched,
		Eliminated:                p.eliminated,
		ReceivedEliminationBonus:  p.receivedEliminationBonus,
		MugVictim:                 p.mugVictim,
		HasMugged:                 p.hasMugged,
		MugFailed:                 p.mugFailed,
		MuggedAmount:              p.muggedAmount,
		InComebackMode:            p.comeback.active,
		ComebackPrediction:        p.comeback.prediction,
		HasComebackPrediction:     p.comeback.hasPrediction,
		JustReturnedFromComeback:  p.comeback.justReturned,
		FailedComebackPrediction:  p.comeback.failed,
		AllPlayersFolded:          p.comeback.allFolded,
		CheatTip:                  containsID(g.losersLastRound, p.id),
	}
}

// Redacted returns a copy of s with every hand except viewer's removed. An
// empty viewer hides all hands.
func (s Snapshot) Redacted(viewer PlayerID) Snapshot {
	out := s
	out.Players = make([]PlayerSnapshot, len(s.Players))
	reveal := s.Phase == PhaseResults
	for i, p := range s.Players {
		if p.ID != viewer && !(reveal && p.Wagered > 0 && !p.Folded) {
			p.Hand = nil
		}
		out.Players[i] = p
	}
	return out
}
