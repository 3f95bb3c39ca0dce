package redhand

import "github.com/sirupsen/logrus"

// ComebackPolicy governs eliminated players who stay attached to the session.
// When enabled they skip the deal and predict a round winner instead; a
// correct prediction reinstates them with ReinstateGold.
type ComebackPolicy interface {
	Enabled() bool
	ReinstateGold(cfg Config) int64
}

// NoComeback removes eliminated players at the next round start.
type NoComeback struct{}

func (NoComeback) Enabled() bool { return false }
func (NoComeback) ReinstateGold(cfg Config) int64 { return 0 }

// FixedComeback reinstates with a fixed bankroll; Gold <= 0 means half the
// starting gold.
type FixedComeback struct {
	Gold int64
}

func (FixedComeback) Enabled() bool { return true }

func (f FixedComeback) ReinstateGold(cfg Config) int64 {
	if f.Gold > 0 {
		return f.Gold
	}
	if half := cfg.StartingGold / 2; half > 0 {
		return half
	}
	return 1
}

// settleEliminationsLocked flags dealt players left without gold and pays the
// survivor bonus: eliminationBonus per eliminated player, floor-split among
// the remaining contenders.
func (g *Game) settleEliminationsLocked(out *SettlementResult) {
	var survivors []*Player
	for _, p := range g.orderedLocked() {
		if !p.dealt() {
			continue
		}
		if p.gold <= 0 {
			p.eliminated = true
			out.Eliminated = append(out.Eliminated, p.id)
			continue
		}
		if p.contender() {
			survivors = append(survivors, p)
		}
	}
	if len(out.Eliminated) == 0 || g.cfg.EliminationBonus <= 0 {
		return
	}

	out.BonusTotal = g.cfg.EliminationBonus * int64(len(out.Eliminated))
	out.BonusShare, out.BonusRoundingLoss = splitEvenly(out.BonusTotal, len(survivors))
	if out.BonusShare <= 0 {
		return
	}
	for _, p := range survivors {
		p.gold += out.BonusShare
		p.receivedEliminationBonus = true
	}
	g.log.WithFields(logrus.Fields{
		"eliminated": len(out.Eliminated),
		"survivors":  len(survivors),
		"share":      out.BonusShare,
	}).Info("survivor bonus paid")
}

// SetComebackPrediction records which dealt player a comeback-mode player
// expects to win the current round.
func (g *Game) SetComebackPrediction(id, target PlayerID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBetting || id == target {
		return false
	}
	p, ok := g.players[id]
	if !ok || !p.comeback.active {
		return false
	}
	t, ok := g.players[target]
	if !ok || !t.dealt() {
		return false
	}
	p.comeback.prediction = target
	p.comeback.hasPrediction = true
	return true
}

func (g *Game) resolveComebacksLocked() []ComebackOutcome {
	anyWagered := false
	for _, p := range g.players {
		if p.contender() {
			anyWagered = true
			break
		}
	}
	won := make(map[PlayerID]bool, len(g.winners))
	for _, id := range g.winners {
		won[id] = true
	}

	policy := g.cfg.comeback()
	var out []ComebackOutcome
	for _, p := range g.orderedLocked() {
		if !p.comeback.active || !p.comeback.hasPrediction {
			continue
		}
		o := ComebackOutcome{ID: p.id, Prediction: p.comeback.prediction}
		switch {
		case !anyWagered:
			p.comeback.allFolded = true
			o.AllFolded = true
		case won[p.comeback.prediction]:
			p.comeback.active = false
			p.comeback.justReturned = true
			p.gold = policy.ReinstateGold(g.cfg)
			o.Reinstated = true
			o.Gold = p.gold
			g.log.WithFields(logrus.Fields{"player": p.id, "gold": p.gold}).Info("comeback succeeded")
		default:
			p.comeback.failed = true
		}
		out = append(out, o)
	}
	return out
}
