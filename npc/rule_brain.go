package npc

import (
	"math/rand"
	"sort"

	"redhanded/card"
	"redhanded/redhand"
)

// turnMemo keeps the rolls already made this round so repeated Decide calls
// within one turn do not re-roll.
type turnMemo struct {
	round      int
	phase      redhand.Phase
	cheatRoll  bool
	mugRoll    bool
	denounced  bool
	betDecided bool
}

// RuleBrain makes decisions based on a PersonalityProfile with tunable parameters.
type RuleBrain struct {
	Persona *NPCPersona
	rng     *rand.Rand
	memo    turnMemo
}

// NewRuleBrain creates a RuleBrain from a persona definition.
func NewRuleBrain(persona *NPCPersona, seed int64) *RuleBrain {
	return &RuleBrain{
		Persona: persona,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (b *RuleBrain) Name() string { return b.Persona.Name }

// Decide implements BrainDecider.
func (b *RuleBrain) Decide(view GameView) Decision {
	if b.memo.round != view.Round || b.memo.phase != view.Phase {
		b.memo = turnMemo{round: view.Round, phase: view.Phase}
	}

	switch view.Phase {
	case redhand.PhaseBetting:
		if view.InComeback {
			return b.decideComeback(view)
		}
		return b.decideBetting(view)
	case redhand.PhaseResults:
		return b.decideResults(view)
	}
	return Decision{Kind: ActionNone}
}

func (b *RuleBrain) decideBetting(view GameView) Decision {
	if len(view.Hand) != redhand.HandSize || view.Folded {
		return Decision{Kind: ActionNone}
	}
	p := b.Persona.Brain
	eval := redhand.Classify(view.Hand)

	if view.Bet == 0 && !view.ChangedCards {
		if idx := discardIndices(view.Hand, eval); len(idx) > 0 {
			return Decision{Kind: ActionChangeCards, Indices: idx}
		}
	}

	if view.Bet == 0 && !view.Cheated && !b.memo.cheatRoll {
		b.memo.cheatRoll = true
		if eval.Rank < redhand.HandTwoPair && b.rng.Float64() < p.CheatRate {
			index, rank := cheatTarget(view.Hand)
			return Decision{Kind: ActionCheat, Index: index, Rank: &rank}
		}
	}

	if view.Bet == 0 && !b.memo.betDecided {
		b.memo.betDecided = true
		strength := handStrength(eval)
		caution := clamp01(p.Caution + (b.rng.Float64()-0.5)*p.Randomness*0.4)
		if strength < caution*0.3 && b.rng.Float64() < caution {
			return Decision{Kind: ActionFold}
		}
		return Decision{Kind: ActionBet, Amount: b.calcBetAmount(view, strength)}
	}

	if view.Bet > 0 && !view.HasMugged && !b.memo.mugRoll {
		b.memo.mugRoll = true
		if b.rng.Float64() < p.CheatRate*0.5 {
			if target, ok := richestCoverable(view); ok {
				return Decision{Kind: ActionMug, Target: target}
			}
		}
	}
	return Decision{Kind: ActionNone}
}

func (b *RuleBrain) decideComeback(view GameView) Decision {
	if view.HasPrediction {
		return Decision{Kind: ActionNone}
	}
	var candidates []OpponentView
	for _, o := range view.Opponents {
		if !o.Folded && o.Gold+o.Bet > 0 {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return Decision{Kind: ActionNone}
	}
	// back the biggest bettor, or a random player when nobody has bet yet
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Bet > candidates[j].Bet })
	pick := candidates[0]
	if pick.Bet == 0 {
		pick = candidates[b.rng.Intn(len(candidates))]
	}
	return Decision{Kind: ActionPredict, Target: pick.ID}
}

func (b *RuleBrain) decideResults(view GameView) Decision {
	if b.memo.denounced {
		return Decision{Kind: ActionNone}
	}
	b.memo.denounced = true
	p := b.Persona.Brain
	var suspects []redhand.PlayerID
	for _, o := range view.Opponents {
		switch {
		case card.CardList(o.Hand).HasDuplicates():
			suspects = append(suspects, o.ID)
		case o.IsWinner && o.HandRank >= redhand.HandFullHouse && b.rng.Float64() < p.Suspicion:
			suspects = append(suspects, o.ID)
		}
	}
	if len(suspects) == 0 {
		return Decision{Kind: ActionNone}
	}
	return Decision{Kind: ActionDenounce, Suspects: suspects}
}

// calcBetAmount scales the bet with hand strength and aggression, in steps of
// the small increment.
func (b *RuleBrain) calcBetAmount(view GameView, strength float64) int64 {
	p := b.Persona.Brain
	aggression := clamp01(p.Aggression + (b.rng.Float64()-0.5)*p.Randomness*0.4)
	fraction := 0.05 + 0.45*aggression*(0.5+strength)
	bet := int64(float64(view.Gold) * fraction)
	if step := view.BetIncrementSmall; step > 0 && bet >= step {
		bet = bet / step * step
	}
	if bet < 1 {
		bet = 1
	}
	if bet > view.Gold {
		bet = view.Gold
	}
	return bet
}

// handStrength maps a category to 0.0–1.0 with a small kicker term.
func handStrength(eval redhand.HandEvaluation) float64 {
	if eval.Rank == redhand.HandInvalid {
		return 0
	}
	s := float64(eval.Rank-1) / 9.0
	if len(eval.Tiebreak) > 0 {
		s += float64(eval.Tiebreak[0]) / 14.0 / 9.0
	}
	return clamp01(s)
}

// discardIndices selects up to three of the lowest unpaired cards. Made hands
// (straight or better) are kept whole.
func discardIndices(hand []card.Card, eval redhand.HandEvaluation) []int {
	if eval.Rank >= redhand.HandStraight {
		return nil
	}
	singles := singleIndices(hand)
	limit := 3
	if eval.Rank >= redhand.HandTwoPair {
		limit = 1
	}
	if len(singles) > limit {
		singles = singles[:limit]
	}
	return singles
}

// singleIndices returns indices of cards whose rank appears once, lowest first.
func singleIndices(hand []card.Card) []int {
	counts := make(map[card.Rank]int, len(hand))
	for _, c := range hand {
		counts[c.Rank()]++
	}
	var out []int
	for i, c := range hand {
		if counts[c.Rank()] == 1 {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return hand[out[i]].Value() < hand[out[j]].Value() })
	return out
}

// cheatTarget overwrites the weakest single with the rank of the best group,
// or of the highest card when nothing is grouped.
func cheatTarget(hand []card.Card) (int, card.Rank) {
	counts := make(map[card.Rank]int, len(hand))
	for _, c := range hand {
		counts[c.Rank()]++
	}
	best := hand[0]
	for _, c := range hand[1:] {
		bc, cc := counts[best.Rank()], counts[c.Rank()]
		if cc > bc || (cc == bc && c.Value() > best.Value()) {
			best = c
		}
	}
	singles := singleIndices(hand)
	for _, i := range singles {
		if hand[i].Rank() != best.Rank() {
			return i, best.Rank()
		}
	}
	return 0, best.Rank()
}

func richestCoverable(view GameView) (redhand.PlayerID, bool) {
	var target redhand.PlayerID
	best := int64(-1)
	for _, o := range view.Opponents {
		free := o.Gold - o.Bet
		if free >= view.Bet && free > best {
			best = free
			target = o.ID
		}
	}
	return target, best >= 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
