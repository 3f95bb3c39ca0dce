package main

import (
	"fmt"

	"github.com/paulhankin/poker"

	"redhanded/card"
	"redhanded/redhand"
)

func toPoker(c card.Card) (poker.Card, error) {
	var s poker.Suit
	switch c.Suit() {
	case card.Heart:
		s = poker.Heart
	case card.Diamond:
		s = poker.Diamond
	case card.Club:
		s = poker.Club
	case card.Spade:
		s = poker.Spade
	default:
		return 0, fmt.Errorf("unknown suit in %s", c)
	}
	return poker.MakeCard(s, poker.Rank(c.Rank()))
}

// describeHand names a hand in long form. Hands holding a duplicate card
// cannot be described by the reference evaluator and fall back to the
// engine's category name.
func describeHand(hand []card.Card, fallback string) string {
	if len(hand) != redhand.HandSize || card.CardList(hand).HasDuplicates() {
		return fallback
	}
	cards := make([]poker.Card, 0, len(hand))
	for _, c := range hand {
		pc, err := toPoker(c)
		if err != nil {
			return fallback
		}
		cards = append(cards, pc)
	}
	d, err := poker.Describe(cards)
	if err != nil {
		return fallback
	}
	return d
}
