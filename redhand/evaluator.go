package redhand

import (
	"sort"

	"redhanded/card"
)

// HandEvaluation is the classification of a 5-card hand.
type HandEvaluation struct {
	Rank     HandRank
	Name     string
	Tiebreak []int
}

func invalidHand() HandEvaluation {
	return HandEvaluation{Rank: HandInvalid, Name: HandInvalid.String()}
}

func newEvaluation(rank HandRank, tiebreak []int) HandEvaluation {
	return HandEvaluation{Rank: rank, Name: rank.String(), Tiebreak: tiebreak}
}

// Classify 计算 5 张牌的牌型与比较向量. Anything other than exactly 5 cards is HandInvalid.
func Classify(cards []card.Card) HandEvaluation {
	if len(cards) != HandSize {
		return invalidHand()
	}

	values := make([]int, 0, HandSize)
	counts := make(map[int]int, HandSize)
	flush := true
	for i, c := range cards {
		if !c.Valid() {
			return invalidHand()
		}
		v := c.Value()
		values = append(values, v)
		counts[v]++
		if i > 0 && c.Suit() != cards[0].Suit() {
			flush = false
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	// group order: count desc, then value desc
	grouped := make([]int, 0, len(counts))
	for v := range counts {
		grouped = append(grouped, v)
	}
	sort.Slice(grouped, func(i, j int) bool {
		ci, cj := counts[grouped[i]], counts[grouped[j]]
		if ci != cj {
			return ci > cj
		}
		return grouped[i] > grouped[j]
	})
	top := counts[grouped[0]]
	second := 0
	if len(grouped) > 1 {
		second = counts[grouped[1]]
	}

	straightHigh := 0
	if len(counts) == HandSize {
		switch {
		case values[0]-values[4] == 4:
			straightHigh = values[0]
		case values[0] == 14 && values[1] == 5 && values[4] == 2:
			// wheel: A-2-3-4-5 plays as 5 high
			straightHigh = 5
		}
	}

	switch {
	case flush && straightHigh == 14:
		return newEvaluation(HandRoyalFlush, []int{})
	case flush && straightHigh > 0:
		return newEvaluation(HandStraightFlush, []int{straightHigh})
	case top >= 4:
		// five of a kind only happens with duplicated cards; it plays as quads
		return newEvaluation(HandFourOfKind, grouped)
	case top == 3 && second == 2:
		return newEvaluation(HandFullHouse, grouped)
	case flush:
		return newEvaluation(HandFlush, values)
	case straightHigh > 0:
		return newEvaluation(HandStraight, []int{straightHigh})
	case top == 3:
		return newEvaluation(HandThreeOfKind, grouped)
	case top == 2 && second == 2:
		return newEvaluation(HandTwoPair, grouped)
	case top == 2:
		return newEvaluation(HandOnePair, grouped)
	}
	return newEvaluation(HandHighCard, values)
}

// Compare returns > 0 when a beats b, < 0 when b beats a and 0 on an exact tie.
func Compare(a, b HandEvaluation) int {
	if a.Rank != b.Rank {
		return int(a.Rank) - int(b.Rank)
	}
	n := len(a.Tiebreak)
	if len(b.Tiebreak) > n {
		n = len(b.Tiebreak)
	}
	for i := 0; i < n; i++ {
		av, bv := tiebreakAt(a.Tiebreak, i), tiebreakAt(b.Tiebreak, i)
		if av != bv {
			return av - bv
		}
	}
	return 0
}

func tiebreakAt(v []int, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// Quality is the short verdict shown next to a hand.
func Quality(r HandRank) string {
	switch r {
	case HandHighCard:
		return "Bad hand"
	case HandOnePair:
		return "Meh hand"
	case HandTwoPair:
		return "Good hand"
	case HandThreeOfKind:
		return "Nice hand"
	case HandStraight:
		return "Great hand"
	case HandFlush:
		return "Strong hand"
	case HandFullHouse:
		return "Excellent hand"
	case HandFourOfKind:
		return "Incredible hand"
	case HandStraightFlush:
		return "Amazing hand"
	case HandRoyalFlush:
		return "Legendary hand"
	}
	return "Unknown hand"
}
