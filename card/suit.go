package card

import (
	"fmt"
	"strings"
)

type Suit byte

const (
	Heart   Suit = iota // ♥️
	Diamond             // ♦️
	Club                // ♣️
	Spade               // ♠️
)

// Suits in canonical deck order.
var Suits = [...]Suit{Heart, Diamond, Club, Spade}

func (s Suit) Valid() bool { return s <= Spade }

func (s Suit) String() string {
	switch s {
	case Heart:
		return "hearts"
	case Diamond:
		return "diamonds"
	case Club:
		return "clubs"
	case Spade:
		return "spades"
	}
	return "?"
}

// Letter is the one-letter suffix used in card notation.
func (s Suit) Letter() string {
	switch s {
	case Heart:
		return "h"
	case Diamond:
		return "d"
	case Club:
		return "c"
	case Spade:
		return "s"
	}
	return "?"
}

func (s Suit) Symbol() string {
	switch s {
	case Heart:
		return "♥"
	case Diamond:
		return "♦"
	case Club:
		return "♣"
	case Spade:
		return "♠"
	}
	return "?"
}

// ParseSuit accepts a letter ("h") or a name ("hearts").
func ParseSuit(str string) (Suit, error) {
	switch strings.ToLower(str) {
	case "h", "heart", "hearts":
		return Heart, nil
	case "d", "diamond", "diamonds":
		return Diamond, nil
	case "c", "club", "clubs":
		return Club, nil
	case "s", "spade", "spades":
		return Spade, nil
	}
	return 0, fmt.Errorf("invalid suit: %q", str)
}
