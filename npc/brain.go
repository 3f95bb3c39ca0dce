package npc

import (
	"redhanded/card"
	"redhanded/redhand"
)

// OpponentView is what a bot can see of another player.
type OpponentView struct {
	ID       redhand.PlayerID
	Gold     int64
	Bet      int64
	Wagered  int64
	Folded   bool
	Hand     []card.Card // only revealed in results
	HandRank redhand.HandRank
	IsWinner bool
}

// GameView is a read-only projection of the game state visible to the bot.
type GameView struct {
	Phase redhand.Phase
	Round int
	Pot   int64

	Me           redhand.PlayerID
	Hand         []card.Card
	Gold         int64
	Bet          int64
	Folded       bool
	ChangedCards bool
	Cheated      bool
	HasMugged    bool

	InComeback    bool
	HasPrediction bool

	MinimalBet        int64
	BetIncrementSmall int64

	Opponents []OpponentView
}

// ActionKind is the type of a bot decision.
type ActionKind byte

const (
	ActionNone ActionKind = iota
	ActionChangeCards
	ActionCheat
	ActionBet
	ActionFold
	ActionMug
	ActionDenounce
	ActionPredict
)

var actionNames = map[ActionKind]string{
	ActionNone:        "none",
	ActionChangeCards: "change_cards",
	ActionCheat:       "cheat",
	ActionBet:         "bet",
	ActionFold:        "fold",
	ActionMug:         "mug",
	ActionDenounce:    "denounce",
	ActionPredict:     "predict",
}

func (a ActionKind) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Decision is what a BrainDecider returns. Only the fields for Kind are set.
type Decision struct {
	Kind     ActionKind
	Indices  []int
	Index    int
	Rank     *card.Rank
	Suit     *card.Suit
	Amount   int64
	Target   redhand.PlayerID
	Suspects []redhand.PlayerID
}

// BrainDecider is the core interface all bot types implement.
type BrainDecider interface {
	// Decide returns the next action; ActionNone ends the bot's turn.
	Decide(view GameView) Decision
	// Name returns a human-readable identifier for debugging.
	Name() string
}

// BuildView projects a snapshot for one player. ok is false when the player
// is not in the snapshot.
func BuildView(s redhand.Snapshot, me redhand.PlayerID) (GameView, bool) {
	view := GameView{
		Phase:             s.Phase,
		Round:             s.Round,
		Pot:               s.Pot,
		Me:                me,
		MinimalBet:        s.MinimalBet,
		BetIncrementSmall: s.BetIncrementSmall,
	}
	winners := make(map[redhand.PlayerID]bool, len(s.Winners))
	for _, id := range s.Winners {
		winners[id] = true
	}
	found := false
	for _, p := range s.Players {
		if p.ID == me {
			found = true
			view.Hand = p.Hand
			view.Gold = p.Gold
			view.Bet = p.Bet
			view.Folded = p.Folded
			view.ChangedCards = p.ChangedCards
			view.Cheated = p.Cheated
			view.HasMugged = p.HasMugged
			view.InComeback = p.InComebackMode
			view.HasPrediction = p.HasComebackPrediction
			continue
		}
		view.Opponents = append(view.Opponents, OpponentView{
			ID:       p.ID,
			Gold:     p.Gold,
			Bet:      p.Bet,
			Wagered:  p.Wagered,
			Folded:   p.Folded,
			Hand:     p.Hand,
			HandRank: p.HandRank,
			IsWinner: winners[p.ID],
		})
	}
	return view, found
}
