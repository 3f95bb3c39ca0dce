package redhand

import "redhanded/card"

type comebackState struct {
	active        bool
	prediction    PlayerID
	hasPrediction bool
	justReturned  bool
	failed        bool
	allFolded     bool
}

// Player is the engine-owned record of one participant. It never leaves the
// package; callers read PlayerSnapshot copies instead.
type Player struct {
	id       PlayerID
	name     string
	attached bool

	hand  card.CardList
	gold  int64
	bet   int64
	ante  int64 // ante paid this round
	stake int64 // bet already swept into the pot this round

	folded   bool
	handEval HandEvaluation

	cheated               bool
	accused               bool
	wronglyAccused        bool
	receivedRedistributed bool
	changedCards          bool
	refreshCount          int
	botched               bool

	eliminated               bool
	receivedEliminationBonus bool

	mugVictim    PlayerID
	hasMugged    bool
	mugFailed    bool
	muggedAmount int64

	comeback comebackState
}

func newPlayer(id PlayerID, name string, gold int64) *Player {
	return &Player{id: id, name: name, gold: gold, attached: true}
}

// dealt reports whether the player holds a hand this round.
func (p *Player) dealt() bool {
	return !p.comeback.active && len(p.hand) == HandSize
}

// wagered is the bet placed this round, whether or not it was swept yet.
func (p *Player) wagered() int64 { return p.bet + p.stake }

// contender reports whether the player's hand competes for the pot.
func (p *Player) contender() bool {
	return p.dealt() && !p.folded && p.wagered() > 0
}

// canAct gates every betting-phase action that requires an untouched hand.
func (p *Player) canAct() bool {
	return p.dealt() && !p.folded && p.bet == 0
}

func (p *Player) placeBet(amount int64) {
	if amount < 0 {
		amount = 0
	}
	if amount > p.gold {
		amount = p.gold
	}
	p.bet = amount
}

func (p *Player) payAnte(amount int64) int64 {
	if amount > p.gold {
		amount = p.gold
	}
	p.gold -= amount
	p.ante = amount
	return amount
}

// resetForNewRound clears every per-round field; gold and comeback mode survive.
func (p *Player) resetForNewRound() {
	p.hand = nil
	p.bet = 0
	p.ante = 0
	p.stake = 0
	p.folded = false
	p.handEval = HandEvaluation{}
	p.cheated = false
	p.accused = false
	p.wronglyAccused = false
	p.receivedRedistributed = false
	p.changedCards = false
	p.refreshCount = 0
	p.botched = false
	p.eliminated = false
	p.receivedEliminationBonus = false
	p.mugVictim = ""
	p.hasMugged = false
	p.mugFailed = false
	p.muggedAmount = 0
	p.comeback.prediction = ""
	p.comeback.hasPrediction = false
	p.comeback.justReturned = false
	p.comeback.failed = false
	p.comeback.allFolded = false
}

// resetEconomy is the fresh-game reset: starting gold, no comeback state.
func (p *Player) resetEconomy(startingGold int64) {
	p.resetForNewRound()
	p.comeback = comebackState{}
	p.gold = startingGold
}
