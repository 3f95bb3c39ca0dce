package redhand

import "github.com/sirupsen/logrus"

type mugAttempt struct {
	mugger PlayerID
	victim PlayerID
}

// MugResult is returned to the mugger. Failed means nothing was recorded.
type MugResult struct {
	Failed bool
}

// MugOutcome is how a recorded attempt resolved at settlement.
type MugOutcome struct {
	Mugger PlayerID
	Victim PlayerID
	Amount int64
	Failed bool
}

// ExecuteMug records a theft of the mugger's own bet from the victim, paid out
// when betting closes. One attempt per player per round.
func (g *Game) ExecuteMug(mugger, victim PlayerID) MugResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBetting || mugger == victim {
		return MugResult{Failed: true}
	}
	m, ok := g.players[mugger]
	if !ok || !m.dealt() || m.folded || m.hasMugged {
		return MugResult{Failed: true}
	}
	v, ok := g.players[victim]
	if !ok || !v.dealt() || !mugFeasible(m, v) {
		return MugResult{Failed: true}
	}

	m.hasMugged = true
	m.mugVictim = victim
	g.muggings = append(g.muggings, mugAttempt{mugger: mugger, victim: victim})
	g.log.WithFields(logrus.Fields{"mugger": mugger, "victim": victim, "amount": m.bet}).Debug("mug recorded")
	return MugResult{}
}

// mugFeasible: the victim must still cover the mugger's bet after their own bet.
func mugFeasible(m, v *Player) bool {
	return m.bet > 0 && v.gold-v.bet >= m.bet
}

// resolveMuggingsLocked runs before the sweep, in attempt order, so each
// check sees balances left by earlier thefts.
func (g *Game) resolveMuggingsLocked() []MugOutcome {
	out := make([]MugOutcome, 0, len(g.muggings))
	for _, a := range g.muggings {
		m, mok := g.players[a.mugger]
		v, vok := g.players[a.victim]
		if !mok || !vok {
			continue
		}
		amount := m.bet
		if m.folded || !v.dealt() || !mugFeasible(m, v) {
			m.mugFailed = true
			out = append(out, MugOutcome{Mugger: a.mugger, Victim: a.victim, Amount: amount, Failed: true})
			g.log.WithFields(logrus.Fields{"mugger": a.mugger, "victim": a.victim}).Debug("mug failed")
			continue
		}
		v.gold -= amount
		v.muggedAmount += amount
		m.gold += amount
		m.cheated = true
		out = append(out, MugOutcome{Mugger: a.mugger, Victim: a.victim, Amount: amount})
		g.log.WithFields(logrus.Fields{"mugger": a.mugger, "victim": a.victim, "amount": amount}).Info("mug succeeded")
	}
	g.muggings = nil
	return out
}
