package redhand

import (
	"math/rand"
	"testing"

	"github.com/paulhankin/poker"

	"redhanded/card"
)

func mustHand(t *testing.T, s string) card.CardList {
	t.Helper()
	cards, err := card.ParseList(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return cards
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestClassify_Categories(t *testing.T) {
	cases := []struct {
		hand     string
		rank     HandRank
		tiebreak []int
	}{
		{"Ah Kh Qh Jh 10h", HandRoyalFlush, nil},
		{"9h 8h 7h 6h 5h", HandStraightFlush, []int{9}},
		{"Ac 2c 3c 4c 5c", HandStraightFlush, []int{5}},
		{"Ks Kh Kd Kc 3s", HandFourOfKind, []int{13, 3}},
		{"Qs Qh Qd 8c 8s", HandFullHouse, []int{12, 8}},
		{"Jd 9d 7d 4d 2d", HandFlush, []int{11, 9, 7, 4, 2}},
		{"10s 9h 8d 7c 6s", HandStraight, []int{10}},
		{"As 2h 3d 4c 5s", HandStraight, []int{5}},
		{"7s 7h 7d Kc 3s", HandThreeOfKind, []int{7, 13, 3}},
		{"Js Jh 5d 5c 2s", HandTwoPair, []int{11, 5, 2}},
		{"10s 10h Kd 8c 3s", HandOnePair, []int{10, 13, 8, 3}},
		{"As Jh 9d 6c 3s", HandHighCard, []int{14, 11, 9, 6, 3}},
	}
	for _, tc := range cases {
		got := Classify(mustHand(t, tc.hand))
		if got.Rank != tc.rank {
			t.Fatalf("%s: expected %s, got %s", tc.hand, tc.rank, got.Rank)
		}
		if got.Name != tc.rank.String() {
			t.Fatalf("%s: expected name %q, got %q", tc.hand, tc.rank.String(), got.Name)
		}
		if !equalInts(got.Tiebreak, tc.tiebreak) {
			t.Fatalf("%s: expected tiebreak %v, got %v", tc.hand, tc.tiebreak, got.Tiebreak)
		}
	}
}

func TestClassify_InvalidSize(t *testing.T) {
	got := Classify(mustHand(t, "Ah Kh Qh Jh"))
	if got.Rank != HandInvalid || got.Name != "Invalid Hand" {
		t.Fatalf("expected invalid hand, got %+v", got)
	}
}

func TestClassify_DuplicatedCardsStillClassify(t *testing.T) {
	got := Classify(mustHand(t, "Ah Ah Kd Qc 2s"))
	if got.Rank != HandOnePair {
		t.Fatalf("expected one pair from duplicated ace, got %s", got.Rank)
	}
	got = Classify(mustHand(t, "9h 9h 9d 9c 9s"))
	if got.Rank != HandFourOfKind {
		t.Fatalf("expected five nines to play as quads, got %s", got.Rank)
	}
}

func permutations(cards card.CardList) []card.CardList {
	if len(cards) <= 1 {
		return []card.CardList{cards.Clone()}
	}
	var out []card.CardList
	for i := range cards {
		rest := make(card.CardList, 0, len(cards)-1)
		rest = append(rest, cards[:i]...)
		rest = append(rest, cards[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append(card.CardList{cards[i]}, p...))
		}
	}
	return out
}

func TestClassify_PermutationInvariant(t *testing.T) {
	hands := []string{
		"Qs Qh Qd 8c 8s",
		"As 2h 3d 4c 5s",
		"Js Jh 5d 5c 2s",
		"As Jh 9d 6c 3s",
	}
	for _, h := range hands {
		base := Classify(mustHand(t, h))
		perms := permutations(mustHand(t, h))
		if len(perms) != 120 {
			t.Fatalf("expected 120 permutations, got %d", len(perms))
		}
		for _, p := range perms {
			got := Classify(p)
			if Compare(got, base) != 0 || got.Rank != base.Rank {
				t.Fatalf("%s: permutation %s classified as %s %v, want %s %v",
					h, p, got.Rank, got.Tiebreak, base.Rank, base.Tiebreak)
			}
		}
	}
}

func TestCompare_CategoryOrder(t *testing.T) {
	royal := Classify(mustHand(t, "As Ks Qs Js 10s"))
	straightFlush := Classify(mustHand(t, "Kh Qh Jh 10h 9h"))
	quads := Classify(mustHand(t, "Ac Ad Ah As Kd"))
	if Compare(royal, straightFlush) <= 0 {
		t.Fatalf("expected royal flush to beat straight flush")
	}
	if Compare(straightFlush, quads) <= 0 {
		t.Fatalf("expected straight flush to beat four of a kind")
	}
	if Compare(quads, royal) >= 0 {
		t.Fatalf("expected four of a kind to lose to royal flush")
	}
}

func TestCompare_WheelIsLowestStraight(t *testing.T) {
	wheel := Classify(mustHand(t, "As 2h 3d 4c 5s"))
	six := Classify(mustHand(t, "2s 3h 4d 5c 6s"))
	if Compare(six, wheel) <= 0 {
		t.Fatalf("expected 6-high straight to beat the wheel")
	}
}

func TestCompare_IdenticalStraightsTie(t *testing.T) {
	a := Classify(mustHand(t, "As Kh Qd Jc 10s"))
	b := Classify(mustHand(t, "Ah Ks Qc Jd 10h"))
	if Compare(a, b) != 0 {
		t.Fatalf("expected exact tie, got %d", Compare(a, b))
	}
}

func TestCompare_KickerDecides(t *testing.T) {
	a := Classify(mustHand(t, "10s 10h Kd 8c 4s"))
	b := Classify(mustHand(t, "10d 10c Kh 8s 3s"))
	if Compare(a, b) <= 0 || Compare(b, a) >= 0 {
		t.Fatalf("expected 4 kicker to beat 3 kicker")
	}
}

func TestCompare_MissingTiebreakCountsAsZero(t *testing.T) {
	a := HandEvaluation{Rank: HandHighCard, Tiebreak: []int{14}}
	b := HandEvaluation{Rank: HandHighCard, Tiebreak: []int{14, 2}}
	if Compare(a, b) >= 0 {
		t.Fatalf("expected shorter tiebreak to lose")
	}
}

func toReference(t *testing.T, cards card.CardList) *[5]poker.Card {
	t.Helper()
	var out [5]poker.Card
	for i, c := range cards {
		var s poker.Suit
		switch c.Suit() {
		case card.Heart:
			s = poker.Heart
		case card.Diamond:
			s = poker.Diamond
		case card.Club:
			s = poker.Club
		default:
			s = poker.Spade
		}
		pc, err := poker.MakeCard(s, poker.Rank(c.Rank()))
		if err != nil {
			t.Fatalf("MakeCard(%s): %v", c, err)
		}
		out[i] = pc
	}
	return &out
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func TestCompare_AgreesWithReferenceEvaluator(t *testing.T) {
	// calibrate the reference score direction on a known pair
	best := poker.Eval5(toReference(t, mustHand(t, "As Ks Qs Js 10s")))
	worst := poker.Eval5(toReference(t, mustHand(t, "7s 5h 4d 3c 2s")))
	dir := sign(int(best) - int(worst))
	if dir == 0 {
		t.Fatalf("reference evaluator scored royal flush and 7-high equally")
	}

	rng := rand.New(rand.NewSource(7))
	deck := card.NewDeck()
	for i := 0; i < 5000; i++ {
		deck.Shuffle(rng)
		a, b := deck[:5].Clone(), deck[5:10].Clone()
		ours := sign(Compare(Classify(a), Classify(b)))
		ref := dir * sign(int(poker.Eval5(toReference(t, a)))-int(poker.Eval5(toReference(t, b))))
		if ours != ref {
			t.Fatalf("hand %s vs %s: ours=%d reference=%d", a, b, ours, ref)
		}
	}
}
