package redhand

import (
	"sort"

	"github.com/sirupsen/logrus"

	"redhanded/card"
)

type PlayerResult struct {
	ID       PlayerID
	Name     string
	Hand     []card.Card
	HandRank HandRank
	HandName string
	Tiebreak []int
	Wagered  int64
	Won      int64
	IsWinner bool
	Folded   bool

	Eliminated       bool
	EliminationBonus int64
	GoldAfter        int64
}

type ComebackOutcome struct {
	ID         PlayerID
	Prediction PlayerID
	Reinstated bool
	Gold       int64
	AllFolded  bool
}

type SettlementResult struct {
	Round        int
	Pot          int64
	Winners      []PlayerID
	Share        int64
	RoundingLoss int64
	// Forfeited is a pot nobody contested. It is discarded when the next
	// round is dealt.
	Forfeited int64

	Players   []PlayerResult
	Muggings  []MugOutcome
	Comebacks []ComebackOutcome

	Eliminated        []PlayerID
	BonusTotal        int64
	BonusShare        int64
	BonusRoundingLoss int64
}

// EndBettingPhase closes betting and settles the round. It is phase-gated:
// any call outside betting returns (nil, false) and changes nothing.
func (g *Game) EndBettingPhase() (*SettlementResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBetting {
		return nil, false
	}

	out := &SettlementResult{Round: g.round}

	// Muggings settle on pre-sweep bets and balances.
	out.Muggings = g.resolveMuggingsLocked()

	ordered := g.orderedLocked()
	g.pot.sweep(ordered)

	// Evaluate contenders
	contenders := make([]*Player, 0, len(ordered))
	for _, p := range ordered {
		if p.contender() {
			p.handEval = Classify(p.hand)
			contenders = append(contenders, p)
		} else {
			p.handEval = HandEvaluation{}
		}
	}

	// Determine winners: the maximal tied group
	sort.SliceStable(contenders, func(i, j int) bool {
		return Compare(contenders[i].handEval, contenders[j].handEval) > 0
	})
	g.winners = nil
	for _, p := range contenders {
		if Compare(p.handEval, contenders[0].handEval) != 0 {
			break
		}
		g.winners = append(g.winners, p.id)
	}

	won := make(map[PlayerID]int64, len(g.winners))
	if len(g.winners) > 0 {
		out.Pot = g.pot.take()
		out.Share, out.RoundingLoss = splitEvenly(out.Pot, len(g.winners))
		for _, id := range g.winners {
			g.players[id].gold += out.Share
			won[id] = out.Share
		}
	} else {
		out.Forfeited = g.pot.amount
	}
	out.Winners = append([]PlayerID(nil), g.winners...)

	g.settleEliminationsLocked(out)
	out.Comebacks = g.resolveComebacksLocked()

	for _, p := range ordered {
		if len(p.hand) == 0 && !p.comeback.active {
			continue
		}
		_, isWinner := won[p.id]
		pr := PlayerResult{
			ID:         p.id,
			Name:       p.name,
			Hand:       p.hand.Clone(),
			HandRank:   p.handEval.Rank,
			HandName:   p.handEval.Name,
			Tiebreak:   append([]int(nil), p.handEval.Tiebreak...),
			Wagered:    p.wagered(),
			Won:        won[p.id],
			IsWinner:   isWinner,
			Folded:     p.folded,
			Eliminated: p.eliminated,
			GoldAfter:  p.gold,
		}
		if p.receivedEliminationBonus {
			pr.EliminationBonus = out.BonusShare
		}
		out.Players = append(out.Players, pr)
	}

	g.phase = PhaseResults
	g.lastSettlement = out
	g.log.WithFields(logrus.Fields{
		"round":   out.Round,
		"pot":     out.Pot,
		"winners": len(out.Winners),
		"loss":    out.RoundingLoss,
	}).Info("betting phase settled")
	return cloneSettlement(out), true
}

// LastSettlement returns the result of the most recent EndBettingPhase this round.
func (g *Game) LastSettlement() (*SettlementResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastSettlement == nil {
		return nil, false
	}
	return cloneSettlement(g.lastSettlement), true
}

func cloneSettlement(s *SettlementResult) *SettlementResult {
	c := *s
	c.Winners = append([]PlayerID(nil), s.Winners...)
	c.Eliminated = append([]PlayerID(nil), s.Eliminated...)
	c.Muggings = append([]MugOutcome(nil), s.Muggings...)
	c.Comebacks = append([]ComebackOutcome(nil), s.Comebacks...)
	c.Players = make([]PlayerResult, len(s.Players))
	for i, pr := range s.Players {
		pr.Hand = append([]card.Card(nil), pr.Hand...)
		pr.Tiebreak = append([]int(nil), pr.Tiebreak...)
		c.Players[i] = pr
	}
	return &c
}
