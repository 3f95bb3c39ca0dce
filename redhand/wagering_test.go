package redhand

import (
	"testing"

	"redhanded/card"
)

func TestChangeCards_FirstChangeIsLegal(t *testing.T) {
	g := startedGame(t, 3)
	before, _ := g.Player(pid(1))

	if !g.ChangeCards(pid(1), []int{0, 3}) {
		t.Fatalf("expected change accepted")
	}
	p, _ := g.Player(pid(1))
	if !p.ChangedCards || p.Cheated || p.RefreshCount != 0 {
		t.Fatalf("expected legal change, got changed=%v cheated=%v refresh=%d", p.ChangedCards, p.Cheated, p.RefreshCount)
	}
	if p.Hand[1] != before.Hand[1] || p.Hand[2] != before.Hand[2] || p.Hand[4] != before.Hand[4] {
		t.Fatalf("unselected cards changed: %v -> %v", before.Hand, p.Hand)
	}
	if card.CardList(p.Hand).HasDuplicates() {
		t.Fatalf("legal change produced a duplicate: %v", p.Hand)
	}
	if totalCards(g) != card.DeckSize {
		t.Fatalf("expected %d cards in play, got %d", card.DeckSize, totalCards(g))
	}
	// no card may be held twice across the table with a single deck
	held := map[card.Card]int{}
	for _, pl := range g.Snapshot().Players {
		for _, c := range pl.Hand {
			held[c]++
			if held[c] > 1 {
				t.Fatalf("card %s held twice", c)
			}
		}
	}
}

func TestChangeCards_RejectsBadRequests(t *testing.T) {
	g := startedGame(t, 2)
	bad := [][]int{nil, {}, {5}, {-1}, {0, 0}, {0, 1, 2, 3, 4, 0}}
	for _, idx := range bad {
		if g.ChangeCards(pid(1), idx) {
			t.Fatalf("expected indices %v rejected", idx)
		}
	}
	if g.ChangeCards("ghost", []int{0}) {
		t.Fatalf("expected unknown player rejected")
	}
	g.PlaceBet(pid(1), 5)
	if g.ChangeCards(pid(1), []int{0}) {
		t.Fatalf("expected change after betting rejected")
	}
	g.Fold(pid(2))
	if g.ChangeCards(pid(2), []int{0}) {
		t.Fatalf("expected change after folding rejected")
	}
	if p, _ := g.Player(pid(1)); p.ChangedCards {
		t.Fatalf("rejected requests must not mark a change")
	}
}

func TestChangeCards_RefreshExploit(t *testing.T) {
	g := startedGame(t, 2)

	g.ChangeCards(pid(1), []int{0})
	if !g.ChangeCards(pid(1), []int{1}) {
		t.Fatalf("expected first refresh accepted")
	}
	p, _ := g.Player(pid(1))
	if p.RefreshCount != 1 || !p.Cheated || p.BotchedCheating || p.Bet != 0 {
		t.Fatalf("expected refresh cheat without botch, got %+v", p)
	}

	if !g.ChangeCards(pid(1), []int{2, 4}) {
		t.Fatalf("expected second refresh accepted")
	}
	p, _ = g.Player(pid(1))
	if p.RefreshCount != 2 || !p.BotchedCheating {
		t.Fatalf("expected botched second refresh, got refresh=%d botched=%v", p.RefreshCount, p.BotchedCheating)
	}
	if !card.CardList(p.Hand).HasDuplicates() {
		t.Fatalf("expected forced duplicate in hand %v", p.Hand)
	}
	if p.Bet < 5 || p.Bet > 50 || p.Bet%5 != 0 {
		t.Fatalf("expected auto-bet multiple of 5 in [5,50], got %d", p.Bet)
	}
	if totalCards(g) != card.DeckSize {
		t.Fatalf("forced duplicate changed the card count: %d", totalCards(g))
	}
	if g.ChangeCards(pid(1), []int{0}) {
		t.Fatalf("expected change after auto-bet rejected")
	}
}

func TestChangeCards_ConservesCardsAcrossManyChanges(t *testing.T) {
	g := startedGame(t, 10)
	for i := 1; i <= 10; i++ {
		g.ChangeCards(pid(i), []int{0, 1, 2, 3, 4})
	}
	if totalCards(g) != card.DeckSize {
		t.Fatalf("expected %d cards, got %d", card.DeckSize, totalCards(g))
	}
	for i := 1; i <= 10; i++ {
		p, _ := g.Player(pid(i))
		if len(p.Hand) != HandSize {
			t.Fatalf("expected 5 cards for %s, got %d", p.ID, len(p.Hand))
		}
	}
}

func TestAutoBet(t *testing.T) {
	g := startedGame(t, 2)
	p := g.players[pid(1)]
	cases := []struct {
		gold     int64
		min, max int64
	}{
		{3, 3, 3},
		{8, 8, 8},
		{9, 5, 5},
		{99, 5, 50},
		{0, 0, 0},
	}
	for _, tc := range cases {
		for i := 0; i < 50; i++ {
			p.gold = tc.gold
			p.bet = 0
			g.autoBetLocked(p)
			if p.bet < tc.min || p.bet > tc.max {
				t.Fatalf("gold %d: expected bet in [%d,%d], got %d", tc.gold, tc.min, tc.max, p.bet)
			}
			if tc.max >= 5 && p.bet%5 != 0 {
				t.Fatalf("gold %d: expected multiple of 5, got %d", tc.gold, p.bet)
			}
		}
	}
}

func TestCheatCard_SuitChosen(t *testing.T) {
	g := startedGame(t, 2)
	spade := card.Spade
	botched, ok := g.CheatCard(pid(1), 2, nil, &spade)
	if !ok || botched {
		t.Fatalf("expected clean suit cheat, got ok=%v botched=%v", ok, botched)
	}
	p, _ := g.Player(pid(1))
	if p.Hand[2].Suit() != card.Spade {
		t.Fatalf("expected spade at index 2, got %s", p.Hand[2])
	}
	if !p.Cheated || p.Bet <= 0 {
		t.Fatalf("expected cheater with auto-bet, got cheated=%v bet=%d", p.Cheated, p.Bet)
	}
	if len(p.Hand) != HandSize {
		t.Fatalf("cheat changed hand size to %d", len(p.Hand))
	}
	if _, ok := g.CheatCard(pid(1), 0, nil, &spade); ok {
		t.Fatalf("expected cheat after auto-bet rejected")
	}
}

func TestCheatCard_RankChosenAvoidsUsedSuits(t *testing.T) {
	g := startedGame(t, 2)
	setHand(t, g, pid(1), "2c Kh Kd 7s 9c")
	king := card.King
	botched, ok := g.CheatCard(pid(1), 0, &king, nil)
	if !ok {
		t.Fatalf("expected rank cheat accepted")
	}
	p, _ := g.Player(pid(1))
	if p.Hand[0].Rank() != card.King {
		t.Fatalf("expected king at index 0, got %s", p.Hand[0])
	}
	dup := card.CardList(p.Hand).HasDuplicates()
	if botched != dup {
		t.Fatalf("botched=%v but duplicate=%v in %v", botched, dup, p.Hand)
	}
}

func TestCheatCard_RejectsBadRequests(t *testing.T) {
	g := startedGame(t, 2)
	king := card.King
	heart := card.Heart
	bogus := card.Rank(14)
	if _, ok := g.CheatCard(pid(1), 0, nil, nil); ok {
		t.Fatalf("expected cheat without rank or suit rejected")
	}
	if _, ok := g.CheatCard(pid(1), 0, &king, &heart); ok {
		t.Fatalf("expected cheat with both rank and suit rejected")
	}
	if _, ok := g.CheatCard(pid(1), 5, &king, nil); ok {
		t.Fatalf("expected out-of-range index rejected")
	}
	if _, ok := g.CheatCard(pid(1), 0, &bogus, nil); ok {
		t.Fatalf("expected invalid rank rejected")
	}
	if p, _ := g.Player(pid(1)); p.Cheated {
		t.Fatalf("rejected cheats must not mark the player")
	}
}

func TestCheatSuit_BotchRateConverges(t *testing.T) {
	g := newTestGame(t, 0)
	hand := mustHand(t, "2c Kh 5d 7s 9c")
	const trials = 48000
	botches := 0
	for i := 0; i < trials; i++ {
		s, botched := g.cheatSuitLocked(hand, 0, card.King)
		if botched {
			botches++
			if s != card.Heart {
				t.Fatalf("botch must copy the held king's suit, got %s", s)
			}
		} else if s == card.Heart {
			t.Fatalf("clean cheat reused a held suit")
		}
	}
	want := trials / botchOdds
	if botches < want-300 || botches > want+300 {
		t.Fatalf("expected about %d botches, got %d", want, botches)
	}
}

func TestCheatSuit_NoSameRankNeverBotches(t *testing.T) {
	g := newTestGame(t, 0)
	hand := mustHand(t, "2c Kh 5d 7s 9c")
	for i := 0; i < 2000; i++ {
		if _, botched := g.cheatSuitLocked(hand, 1, card.King); botched {
			t.Fatalf("botch without another card of the rank")
		}
	}
}

func TestCheats_ClosedToBrokePlayers(t *testing.T) {
	g := startedGame(t, 2, func(c *Config) { c.MinimalBet = 150 })
	king := card.King
	if _, ok := g.CheatCard(pid(1), 0, &king, nil); ok {
		t.Fatalf("expected cheat without gold rejected")
	}
	if !g.ChangeCards(pid(1), []int{0}) {
		t.Fatalf("expected the legal change accepted")
	}
	for i := 0; i < 3; i++ {
		if g.ChangeCards(pid(1), []int{1}) {
			t.Fatalf("expected refresh without gold rejected")
		}
	}
	p, _ := g.Player(pid(1))
	if p.Cheated || p.RefreshCount != 0 || p.BotchedCheating {
		t.Fatalf("expected no cheat recorded, got %+v", p)
	}
}
