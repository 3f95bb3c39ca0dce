package redhand

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"redhanded/card"
)

// Game is the session aggregate. Every exported method runs as one
// transaction under mu; nothing it returns aliases internal state.
type Game struct {
	cfg Config
	rng *rand.Rand
	log logrus.FieldLogger
	now func() time.Time

	mu sync.Mutex

	players map[PlayerID]*Player
	order   []PlayerID // join order

	phase            Phase
	round            int
	pool             *card.Pool
	pot              pot
	winners          []PlayerID
	bettingStartedAt time.Time

	punishmentUsed bool
	suspicions     map[PlayerID][]PlayerID // suspect -> accusers in order
	suspectOrder   []PlayerID

	losersLastRound []PlayerID
	worstLastRound  PlayerID

	muggings []mugAttempt

	lastSettlement *SettlementResult
	lastPunishment *PunishmentResult
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Game{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(seed)),
		log:        cfg.logger(),
		now:        now,
		players:    make(map[PlayerID]*Player),
		suspicions: make(map[PlayerID][]PlayerID),
		phase:      PhaseLobby,
	}, nil
}

func (g *Game) Config() Config { return g.cfg }

// Join registers a player, or renames and re-attaches a known one. The returned
// name is made unique by appending a counter.
func (g *Game) Join(id PlayerID, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return "", ErrInvalidName
	}
	if p, ok := g.players[id]; ok {
		p.attached = true
		if p.name != name {
			p.name = g.uniqueNameLocked(name, id)
		}
		return p.name, nil
	}

	unique := g.uniqueNameLocked(name, "")
	g.players[id] = newPlayer(id, unique, g.cfg.StartingGold)
	g.order = append(g.order, id)
	g.log.WithFields(logrus.Fields{"player": id, "name": unique}).Debug("player joined")
	return unique, nil
}

func (g *Game) uniqueNameLocked(name string, self PlayerID) string {
	taken := make(map[string]bool, len(g.players))
	for id, p := range g.players {
		if id != self {
			taken[p.name] = true
		}
	}
	unique := name
	for counter := 1; taken[unique]; counter++ {
		unique = name + strconv.Itoa(counter)
	}
	return unique
}

// Attach and Detach record connection liveness from the session layer.
func (g *Game) Attach(id PlayerID) bool { return g.setAttached(id, true) }

func (g *Game) Detach(id PlayerID) bool { return g.setAttached(id, false) }

func (g *Game) setAttached(id PlayerID, v bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return false
	}
	p.attached = v
	return true
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// BettingDeadline is when the current betting phase lapses. ok is false outside
// betting or when no duration is configured.
func (g *Game) BettingDeadline() (deadline time.Time, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseBetting || g.cfg.BettingPhaseDuration <= 0 {
		return time.Time{}, false
	}
	return g.bettingStartedAt.Add(g.cfg.BettingPhaseDuration), true
}

// BettingElapsed reports whether the betting phase has run past its deadline
// at now.
func (g *Game) BettingElapsed(now time.Time) bool {
	deadline, ok := g.BettingDeadline()
	return ok && !now.Before(deadline)
}

// StartGame deals the first round to every registered player.
func (g *Game) StartGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseLobby {
		return fmt.Errorf("%w: start game in %s", ErrInvalidPhase, g.phase)
	}
	return g.startFreshLocked()
}

// StartNewGame is the soft reset: names are kept, everything else starts over.
func (g *Game) StartNewGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseEnded && g.phase != PhaseResults {
		return fmt.Errorf("%w: start new game in %s", ErrInvalidPhase, g.phase)
	}
	return g.startFreshLocked()
}

func (g *Game) startFreshLocked() error {
	if len(g.players) < g.cfg.MinPlayers {
		return fmt.Errorf("%w: %d < %d", ErrNotEnoughPlayers, len(g.players), g.cfg.MinPlayers)
	}
	for _, p := range g.orderedLocked() {
		p.resetEconomy(g.cfg.StartingGold)
	}
	g.round = 1
	g.pot.reset()
	g.losersLastRound = nil
	g.worstLastRound = ""
	g.dealRoundLocked()
	g.log.WithFields(logrus.Fields{"players": len(g.players), "decks": g.pool.NumDecks()}).Info("game started")
	return nil
}

// StartNewRound moves from results to the next betting phase.
func (g *Game) StartNewRound() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseResults {
		return fmt.Errorf("%w: start new round in %s", ErrInvalidPhase, g.phase)
	}

	g.recordLastRoundLocked()

	policy := g.cfg.comeback()
	for _, p := range g.orderedLocked() {
		if p.gold > 0 {
			continue
		}
		if policy.Enabled() && p.attached {
			if !p.comeback.active {
				g.log.WithField("player", p.id).Info("player entered comeback mode")
			}
			p.comeback.active = true
			continue
		}
		g.removeLocked(p.id)
		g.log.WithField("player", p.id).Info("player eliminated")
	}

	for _, p := range g.players {
		p.resetForNewRound()
	}
	if g.pot.amount > 0 {
		g.log.WithField("amount", g.pot.amount).Info("uncontested pot forfeited")
	}
	g.pot.reset()
	g.round++
	g.dealRoundLocked()
	return nil
}

// recordLastRoundLocked computes the informational losers list and worst
// performer from the settled round.
func (g *Game) recordLastRoundLocked() {
	won := make(map[PlayerID]bool, len(g.winners))
	for _, id := range g.winners {
		won[id] = true
	}

	g.losersLastRound = nil
	var bettors []*Player
	for _, p := range g.orderedLocked() {
		if !p.contender() {
			continue
		}
		bettors = append(bettors, p)
		if !won[p.id] {
			g.losersLastRound = append(g.losersLastRound, p.id)
		}
	}

	g.worstLastRound = ""
	if len(bettors) < 2 {
		return
	}
	lowest := bettors[0].handEval.Rank
	for _, p := range bettors[1:] {
		if p.handEval.Rank < lowest {
			lowest = p.handEval.Rank
		}
	}
	var worst []PlayerID
	for _, p := range bettors {
		if p.handEval.Rank == lowest {
			worst = append(worst, p.id)
		}
	}
	g.worstLastRound = worst[g.rng.Intn(len(worst))]
}

// EndGame makes the session terminal until StartNewGame or ResetPlayers.
func (g *Game) EndGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBetting && g.phase != PhaseResults {
		return fmt.Errorf("%w: end game in %s", ErrInvalidPhase, g.phase)
	}
	g.phase = PhaseEnded
	g.log.WithField("round", g.round).Info("game ended")
	return nil
}

// ResetPlayers wipes the player map and returns to the lobby.
func (g *Game) ResetPlayers() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseEnded {
		return fmt.Errorf("%w: reset players in %s", ErrInvalidPhase, g.phase)
	}
	g.players = make(map[PlayerID]*Player)
	g.order = nil
	g.phase = PhaseLobby
	g.round = 0
	g.pot.reset()
	g.pool = nil
	g.winners = nil
	g.losersLastRound = nil
	g.worstLastRound = ""
	g.clearRoundLedgerLocked()
	g.lastSettlement = nil
	return nil
}

// dealRoundLocked builds a fresh pool for the dealt players, deals, antes and
// opens betting.
func (g *Game) dealRoundLocked() {
	dealt := make([]*Player, 0, len(g.players))
	for _, p := range g.orderedLocked() {
		if !p.comeback.active {
			dealt = append(dealt, p)
		}
	}

	g.pool = card.NewPool(card.NumDecks(len(dealt)), g.rng)
	for _, p := range dealt {
		hand, ok := g.pool.Deal(HandSize)
		if !ok {
			panic("deck underflow")
		}
		p.hand = hand
	}
	g.pot.collectAnte(dealt, g.cfg.MinimalBet)

	g.winners = nil
	g.clearRoundLedgerLocked()
	g.lastSettlement = nil
	g.phase = PhaseBetting
	g.bettingStartedAt = g.now()
}

func (g *Game) clearRoundLedgerLocked() {
	g.punishmentUsed = false
	g.suspicions = make(map[PlayerID][]PlayerID)
	g.suspectOrder = nil
	g.muggings = nil
	g.lastPunishment = nil
}

func (g *Game) removeLocked(id PlayerID) {
	delete(g.players, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *Game) orderedLocked() []*Player {
	out := make([]*Player, 0, len(g.order))
	for _, id := range g.order {
		if p, ok := g.players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) dealtLocked() []*Player {
	out := make([]*Player, 0, len(g.order))
	for _, p := range g.orderedLocked() {
		if p.dealt() {
			out = append(out, p)
		}
	}
	return out
}

// handsLocked collects every hand currently dealt, for duplicate limits.
func (g *Game) handsLocked() []card.CardList {
	out := make([]card.CardList, 0, len(g.players))
	for _, p := range g.orderedLocked() {
		if len(p.hand) > 0 {
			out = append(out, p.hand)
		}
	}
	return out
}
