package redhand

import (
	"github.com/sirupsen/logrus"

	"redhanded/card"
)

// CheatCard rewrites one card of the player's hand. Exactly one of rank or suit
// is chosen by the player; the other is random. Picking a rank the hand already
// holds risks a 1-in-24 botch that copies an existing suit, leaving a duplicate
// card. ok is false when the request was rejected.
func (g *Game) CheatCard(id PlayerID, index int, rank *card.Rank, suit *card.Suit) (botched bool, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBetting || index < 0 || index >= HandSize {
		return false, false
	}
	if (rank == nil) == (suit == nil) {
		return false, false
	}
	p, found := g.players[id]
	if !found || !p.canAct() || p.gold == 0 {
		return false, false
	}

	var next card.Card
	if suit != nil {
		if !suit.Valid() {
			return false, false
		}
		next = card.New(*suit, card.Rank(g.rng.Intn(int(card.King))+1))
	} else {
		if !rank.Valid() {
			return false, false
		}
		var s card.Suit
		s, botched = g.cheatSuitLocked(p.hand, index, *rank)
		next = card.New(s, *rank)
	}

	p.hand[index] = next
	p.cheated = true
	if botched {
		p.botched = true
	}
	g.autoBetLocked(p)

	g.log.WithFields(logrus.Fields{
		"player":  id,
		"index":   index,
		"card":    next.String(),
		"botched": botched,
	}).Debug("card cheated")
	return botched, true
}

// cheatSuitLocked picks the suit for a rank-chosen cheat.
func (g *Game) cheatSuitLocked(hand card.CardList, index int, rank card.Rank) (card.Suit, bool) {
	var sameRank []card.Card
	used := make(map[card.Suit]bool, len(card.Suits))
	for i, c := range hand {
		if i != index && c.Rank() == rank {
			sameRank = append(sameRank, c)
			used[c.Suit()] = true
		}
	}
	if len(sameRank) == 0 {
		return card.Suits[g.rng.Intn(len(card.Suits))], false
	}
	if g.rng.Intn(botchOdds) == 0 {
		return sameRank[g.rng.Intn(len(sameRank))].Suit(), true
	}
	free := make([]card.Suit, 0, len(card.Suits))
	for _, s := range card.Suits {
		if !used[s] {
			free = append(free, s)
		}
	}
	if len(free) == 0 {
		return card.Suits[g.rng.Intn(len(card.Suits))], false
	}
	return free[g.rng.Intn(len(free))], false
}
