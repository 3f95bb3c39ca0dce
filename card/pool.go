package card

import (
	"errors"
	"math/rand"
)

// PlayersPerDeck is how many seated players one 52-card deck serves.
const PlayersPerDeck = 10

var ErrNoReplacement = errors.New("card: no replacement card available")

// NewDeck returns the canonical 52 cards: hearts, diamonds, clubs, spades, each A..K.
func NewDeck() CardList {
	out := make(CardList, 0, DeckSize)
	for _, s := range Suits {
		for r := Ace; r <= King; r++ {
			out = append(out, New(s, r))
		}
	}
	return out
}

// NumDecks is ceil(players/10), never below 1.
func NumDecks(players int) int {
	if players <= 0 {
		return 1
	}
	return (players + PlayersPerDeck - 1) / PlayersPerDeck
}

// Pool is the shared multi-deck draw pile of a session.
type Pool struct {
	numDecks int
	cards    CardList
	rng      *rand.Rand
}

// NewPool concatenates numDecks decks and shuffles them with rng.
func NewPool(numDecks int, rng *rand.Rand) *Pool {
	if numDecks < 1 {
		numDecks = 1
	}
	p := &Pool{numDecks: numDecks, rng: rng}
	p.cards = fullSet(numDecks)
	p.cards.Shuffle(rng)
	return p
}

func fullSet(numDecks int) CardList {
	deck := NewDeck()
	out := make(CardList, 0, DeckSize*numDecks)
	for i := 0; i < numDecks; i++ {
		out = append(out, deck...)
	}
	return out
}

func (p *Pool) NumDecks() int { return p.numDecks }

func (p *Pool) Len() int { return p.cards.Count() }

// Cards returns a copy of the remaining pile, top first.
func (p *Pool) Cards() CardList { return p.cards.Clone() }

// Deal pops n cards off the top.
func (p *Pool) Deal(n int) (CardList, bool) {
	cards, ok := p.cards.PopCards(n)
	if !ok {
		return nil, false
	}
	return CardList(cards), true
}

// Return puts discarded cards back at the bottom of the pile.
func (p *Pool) Return(cards ...Card) {
	p.cards.Add(cards...)
}

// DrawReplacement removes and returns the first pool card that is not already in
// hand and whose count across hands is below maxDuplicates. hands must include
// every hand currently dealt, hand itself included. When nothing qualifies the
// pool is rebuilt once from the cards not held in any hand.
func (p *Pool) DrawReplacement(hand CardList, hands []CardList, maxDuplicates int) (Card, error) {
	if c, ok := p.scan(hand, hands, maxDuplicates); ok {
		return c, nil
	}
	p.regenerate(hands)
	if c, ok := p.scan(hand, hands, maxDuplicates); ok {
		return c, nil
	}
	return CardInvalid, ErrNoReplacement
}

func (p *Pool) scan(hand CardList, hands []CardList, maxDuplicates int) (Card, bool) {
	held := countHeld(hands)
	for i, c := range p.cards {
		if hand.Contains(c) {
			continue
		}
		if held[c] >= maxDuplicates {
			continue
		}
		return p.cards.RemoveAt(i), true
	}
	return CardInvalid, false
}

// regenerate replaces the pile with a fresh shuffled numDecks×52 multiset minus
// the cards currently held, so the total card count is unchanged.
func (p *Pool) regenerate(hands []CardList) {
	held := countHeld(hands)
	out := make(CardList, 0, DeckSize*p.numDecks)
	for _, c := range fullSet(p.numDecks) {
		if held[c] > 0 {
			held[c]--
			continue
		}
		out = append(out, c)
	}
	out.Shuffle(p.rng)
	p.cards = out
}

func countHeld(hands []CardList) map[Card]int {
	held := make(map[Card]int, DeckSize)
	for _, h := range hands {
		for _, c := range h {
			held[c]++
		}
	}
	return held
}
