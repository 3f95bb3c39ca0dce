package redhand

import (
	"sync"
	"testing"
)

// eliminateP3 plays round 1 so that p3 loses everything and p1 wins.
func eliminateP3(t *testing.T, g *Game) *SettlementResult {
	t.Helper()
	setHand(t, g, pid(1), "Ah Kh Qh Jh 10h")
	setHand(t, g, pid(2), "9s 9d 4c 3c 2h")
	setHand(t, g, pid(3), "Ks Jd 8c 6d 4h")
	g.PlaceBet(pid(1), 10)
	g.PlaceBet(pid(2), 5)
	g.PlaceBet(pid(3), 99)
	res, ok := g.EndBettingPhase()
	if !ok {
		t.Fatalf("expected settlement")
	}
	return res
}

func withComeback(c *Config) { c.Comeback = FixedComeback{} }

func TestElimination_SurvivorBonus(t *testing.T) {
	g := startedGame(t, 3)
	res := eliminateP3(t, g)

	if len(res.Eliminated) != 1 || res.Eliminated[0] != pid(3) {
		t.Fatalf("expected p3 eliminated, got %v", res.Eliminated)
	}
	if res.BonusTotal != 10 || res.BonusShare != 5 || res.BonusRoundingLoss != 0 {
		t.Fatalf("expected 10 bonus split 5/5, got %+v", res)
	}
	want := map[PlayerID]int64{pid(1): 99 - 10 + 117 + 5, pid(2): 99, pid(3): 0}
	for id, gold := range want {
		p, _ := g.Player(id)
		if p.Gold != gold {
			t.Fatalf("expected %s gold %d, got %d", id, gold, p.Gold)
		}
	}
	p2, _ := g.Player(pid(2))
	p3, _ := g.Player(pid(3))
	if !p2.ReceivedEliminationBonus || !p3.Eliminated || p3.ReceivedEliminationBonus {
		t.Fatalf("unexpected flags p2=%+v p3=%+v", p2, p3)
	}
}

func TestElimination_RemovedWithoutComeback(t *testing.T) {
	g := startedGame(t, 3)
	eliminateP3(t, g)
	if err := g.StartNewRound(); err != nil {
		t.Fatalf("StartNewRound err: %v", err)
	}
	if _, ok := g.Player(pid(3)); ok {
		t.Fatalf("expected p3 removed")
	}
	if s := g.Snapshot(); len(s.Players) != 2 || s.Pot != 2 {
		t.Fatalf("expected 2 players and pot 2, got %d players pot %d", len(s.Players), s.Pot)
	}
}

func TestComeback_CorrectPredictionReinstates(t *testing.T) {
	g := startedGame(t, 3, withComeback)
	eliminateP3(t, g)
	if err := g.StartNewRound(); err != nil {
		t.Fatalf("StartNewRound err: %v", err)
	}

	p3, ok := g.Player(pid(3))
	if !ok || !p3.InComebackMode || len(p3.Hand) != 0 || p3.Ante != 0 {
		t.Fatalf("expected p3 in comeback without a hand, got %+v", p3)
	}
	if s := g.Snapshot(); s.Pot != 2 {
		t.Fatalf("expected ante only from dealt players, got pot %d", s.Pot)
	}
	if g.SetComebackPrediction(pid(1), pid(2)) {
		t.Fatalf("expected prediction from a dealt player rejected")
	}
	if !g.SetComebackPrediction(pid(3), pid(1)) {
		t.Fatalf("expected prediction accepted")
	}
	if g.ChangeCards(pid(3), []int{0}) || g.PlaceBet(pid(3), 1) {
		t.Fatalf("expected comeback player barred from betting actions")
	}

	setHand(t, g, pid(1), "Ah Kh Qh Jh 10h")
	setHand(t, g, pid(2), "9s 9d 4c 3c 2h")
	g.PlaceBet(pid(1), 5)
	g.PlaceBet(pid(2), 5)
	res, _ := g.EndBettingPhase()
	if len(res.Comebacks) != 1 || !res.Comebacks[0].Reinstated || res.Comebacks[0].Gold != 50 {
		t.Fatalf("expected reinstatement with 50, got %+v", res.Comebacks)
	}
	p3, _ = g.Player(pid(3))
	if p3.InComebackMode || !p3.JustReturnedFromComeback || p3.Gold != 50 {
		t.Fatalf("expected p3 back with 50 gold, got %+v", p3)
	}

	g.StartNewRound()
	p3, _ = g.Player(pid(3))
	if p3.Gold != 49 || len(p3.Hand) != HandSize || p3.JustReturnedFromComeback {
		t.Fatalf("expected p3 dealt in after ante, got gold=%d hand=%d", p3.Gold, len(p3.Hand))
	}
}

func TestComeback_WrongPrediction(t *testing.T) {
	g := startedGame(t, 3, withComeback)
	eliminateP3(t, g)
	g.StartNewRound()
	g.SetComebackPrediction(pid(3), pid(2))
	setHand(t, g, pid(1), "Ah Kh Qh Jh 10h")
	setHand(t, g, pid(2), "9s 9d 4c 3c 2h")
	g.PlaceBet(pid(1), 5)
	g.PlaceBet(pid(2), 5)
	g.EndBettingPhase()

	p3, _ := g.Player(pid(3))
	if !p3.InComebackMode || !p3.FailedComebackPrediction || p3.Gold != 0 {
		t.Fatalf("expected p3 still out, got %+v", p3)
	}
	g.StartNewRound()
	if p3, ok := g.Player(pid(3)); !ok || !p3.InComebackMode || p3.FailedComebackPrediction {
		t.Fatalf("expected p3 kept in comeback with a fresh prediction slot, got %+v", p3)
	}
}

func TestComeback_AllFolded(t *testing.T) {
	g := startedGame(t, 3, withComeback)
	eliminateP3(t, g)
	g.StartNewRound()
	g.SetComebackPrediction(pid(3), pid(1))
	g.Fold(pid(1))
	g.Fold(pid(2))
	res, _ := g.EndBettingPhase()

	if len(res.Comebacks) != 1 || !res.Comebacks[0].AllFolded {
		t.Fatalf("expected all-folded outcome, got %+v", res.Comebacks)
	}
	p3, _ := g.Player(pid(3))
	if !p3.AllPlayersFolded || !p3.InComebackMode {
		t.Fatalf("expected p3 still in comeback, got %+v", p3)
	}
}

func TestComeback_DetachedPlayerRemoved(t *testing.T) {
	g := startedGame(t, 3, withComeback)
	eliminateP3(t, g)
	g.Detach(pid(3))
	g.StartNewRound()
	if _, ok := g.Player(pid(3)); ok {
		t.Fatalf("expected detached eliminated player removed")
	}
}

func TestFixedComeback_ReinstateGold(t *testing.T) {
	cfg := testConfig()
	if got := (FixedComeback{}).ReinstateGold(cfg); got != 50 {
		t.Fatalf("expected half of starting gold, got %d", got)
	}
	if got := (FixedComeback{Gold: 30}).ReinstateGold(cfg); got != 30 {
		t.Fatalf("expected fixed 30, got %d", got)
	}
	if (NoComeback{}).Enabled() {
		t.Fatalf("expected NoComeback disabled")
	}
}

func TestGame_ConcurrentActionsKeepInvariants(t *testing.T) {
	const players = 8
	g := startedGame(t, players)

	var wg sync.WaitGroup
	for i := 1; i <= players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			me := pid(i)
			other := pid(i%players + 1)
			for j := 0; j < 20; j++ {
				g.ChangeCards(me, []int{j % HandSize})
				g.Snapshot()
				g.DenounceCheaters(me, []PlayerID{other})
			}
			if i%3 == 0 {
				g.Fold(me)
				return
			}
			g.PlaceBet(me, int64(5*i))
			g.ExecuteMug(me, other)
		}(i)
	}
	wg.Wait()

	s := g.Snapshot()
	sum := s.Pot
	for _, p := range s.Players {
		if len(p.Hand) != HandSize {
			t.Fatalf("expected 5 cards for %s, got %d", p.ID, len(p.Hand))
		}
		sum += p.Gold
	}
	if sum != players*100 {
		t.Fatalf("expected %d gold before settlement, got %d", players*100, sum)
	}

	res, ok := g.EndBettingPhase()
	if !ok {
		t.Fatalf("expected settlement")
	}
	s = g.Snapshot()
	sum = s.Pot + res.RoundingLoss
	bonus := int64(0)
	for _, pr := range res.Players {
		bonus += pr.EliminationBonus
	}
	for _, p := range s.Players {
		if p.Gold < 0 {
			t.Fatalf("negative gold for %s: %d", p.ID, p.Gold)
		}
		sum += p.Gold
	}
	if sum != players*100+bonus {
		t.Fatalf("gold not conserved: got %d, want %d", sum, players*100+bonus)
	}
}
