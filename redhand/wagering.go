package redhand

import (
	"github.com/sirupsen/logrus"
)

// ChangeCards swaps the cards at the given hand indices for pool cards. The
// first change in a round is legal. Every later one is a refresh exploit that
// marks the player as a cheater; from the second refresh on, the first
// selected slot copies another card of the same hand instead of drawing.
func (g *Game) ChangeCards(id PlayerID, indices []int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBetting {
		return false
	}
	p, ok := g.players[id]
	if !ok || !p.canAct() || !validIndices(indices) {
		return false
	}
	// a broke player has nothing to auto-bet, so refreshes stay closed
	if p.changedCards && p.gold == 0 {
		return false
	}

	if p.changedCards {
		p.refreshCount++
		p.cheated = true
	} else {
		p.changedCards = true
	}
	forced := p.refreshCount >= 2

	draw := indices
	if forced {
		draw = indices[1:]
	}
	hands := g.handsLocked()
	maxDuplicates := g.pool.NumDecks()
	for _, idx := range draw {
		c, err := g.pool.DrawReplacement(p.hand, hands, maxDuplicates)
		if err != nil {
			g.log.WithFields(logrus.Fields{"player": id, "index": idx}).WithError(err).Warn("card change skipped")
			continue
		}
		old := p.hand[idx]
		p.hand[idx] = c
		g.pool.Return(old)
	}

	if forced {
		// the copy is written last so no later draw overwrites it
		idx := indices[0]
		p.hand[idx] = p.hand[g.otherIndexLocked(idx)]
		p.botched = true
		g.autoBetLocked(p)
		g.log.WithFields(logrus.Fields{"player": id, "refreshes": p.refreshCount}).Debug("refresh exploit botched")
	}
	return true
}

// validIndices: 1..5 distinct hand positions.
func validIndices(indices []int) bool {
	if len(indices) == 0 || len(indices) > HandSize {
		return false
	}
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= HandSize || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

func (g *Game) otherIndexLocked(idx int) int {
	other := g.rng.Intn(HandSize - 1)
	if other >= idx {
		other++
	}
	return other
}

// PlaceBet sets the player's bet for this round, clamped to their gold.
func (g *Game) PlaceBet(id PlayerID, amount int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBetting || amount < 0 {
		return false
	}
	p, ok := g.players[id]
	if !ok || !p.dealt() || p.folded {
		return false
	}
	p.placeBet(amount)
	return true
}

// Fold drops the player from this round's pot. It cannot be undone.
func (g *Game) Fold(id PlayerID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBetting {
		return false
	}
	p, ok := g.players[id]
	if !ok || !p.dealt() || p.folded {
		return false
	}
	p.folded = true
	p.bet = 0
	return true
}

// autoBetLocked places the bet a cheater is committed to: a multiple of 5 up to
// half their gold, or everything when that range is empty.
func (g *Game) autoBetLocked(p *Player) {
	half := (p.gold + 1) / 2
	maxBet := half / autoBetStep * autoBetStep
	if maxBet >= autoBetStep {
		options := maxBet / autoBetStep
		p.placeBet((g.rng.Int63n(options) + 1) * autoBetStep)
		return
	}
	if p.gold > 0 {
		p.placeBet(p.gold)
	}
}
