package npc

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"redhanded/card"
	"redhanded/redhand"
)

// maxStepsPerTurn bounds one Play call; a full betting turn needs at most four.
const maxStepsPerTurn = 8

// Engine is the part of the game API a bot plays through.
type Engine interface {
	Join(id redhand.PlayerID, name string) (string, error)
	Snapshot() redhand.Snapshot
	ChangeCards(id redhand.PlayerID, indices []int) bool
	CheatCard(id redhand.PlayerID, index int, rank *card.Rank, suit *card.Suit) (botched bool, ok bool)
	PlaceBet(id redhand.PlayerID, amount int64) bool
	Fold(id redhand.PlayerID) bool
	ExecuteMug(mugger, victim redhand.PlayerID) redhand.MugResult
	DenounceCheaters(accuser redhand.PlayerID, suspects []redhand.PlayerID) bool
	SetComebackPrediction(id, target redhand.PlayerID) bool
}

// NPCInstance represents an active bot seated in a game.
type NPCInstance struct {
	PlayerID   redhand.PlayerID
	Name       string
	Persona    *NPCPersona
	Brain      BrainDecider
	ThinkDelay time.Duration
}

// Manager manages bot lifecycle and decision-making in one game.
type Manager struct {
	registry  *PersonaRegistry
	instances map[redhand.PlayerID]*NPCInstance
	order     []redhand.PlayerID
	mu        sync.RWMutex
	rng       *rand.Rand
	log       logrus.FieldLogger
}

// NewManager creates a bot manager. seed 0 is time-based; a nil logger logs
// to the standard logrus logger.
func NewManager(registry *PersonaRegistry, seed int64, log logrus.FieldLogger) *Manager {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	return &Manager{
		registry:  registry,
		instances: make(map[redhand.PlayerID]*NPCInstance),
		rng:       rand.New(rand.NewSource(seed)),
		log:       log,
	}
}

// Registry returns the underlying PersonaRegistry.
func (m *Manager) Registry() *PersonaRegistry {
	return m.registry
}

// SpawnNPC registers a bot for persona in the game. An empty persona ID picks
// one at random.
func (m *Manager) SpawnNPC(game Engine, personaID string) (*NPCInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	persona := m.registry.Get(personaID)
	if personaID == "" {
		persona = m.registry.Random(m.rng)
	}
	if persona == nil {
		return nil, fmt.Errorf("persona %q not found", personaID)
	}

	id := redhand.PlayerID("bot-" + uuid.NewString())
	name, err := game.Join(id, persona.Name)
	if err != nil {
		return nil, fmt.Errorf("spawn NPC %s: %w", persona.Name, err)
	}

	// Think delay: 1–3 seconds base, plus random jitter.
	baseMs := 1000 + int(persona.Brain.Randomness*2000)
	jitterMs := m.rng.Intn(1000)

	inst := &NPCInstance{
		PlayerID:   id,
		Name:       name,
		Persona:    persona,
		Brain:      NewRuleBrain(persona, m.rng.Int63()),
		ThinkDelay: time.Duration(baseMs+jitterMs) * time.Millisecond,
	}
	m.instances[id] = inst
	m.order = append(m.order, id)

	m.log.WithFields(logrus.Fields{"npc": name, "persona": persona.ID, "player": id}).Info("NPC spawned")
	return inst, nil
}

// Play lets one bot act until its brain has nothing left to do this phase.
// It returns the decisions that the engine accepted.
func (m *Manager) Play(game Engine, id redhand.PlayerID) []Decision {
	m.mu.RLock()
	inst := m.instances[id]
	m.mu.RUnlock()
	if inst == nil {
		return nil
	}

	var applied []Decision
	for step := 0; step < maxStepsPerTurn; step++ {
		view, ok := BuildView(game.Snapshot().Redacted(id), id)
		if !ok {
			return applied
		}
		d := inst.Brain.Decide(view)
		if d.Kind == ActionNone {
			return applied
		}
		if apply(game, id, d) {
			applied = append(applied, d)
		}
		m.log.WithFields(logrus.Fields{"npc": inst.Name, "action": d.Kind}).Debug("NPC decided")
	}
	return applied
}

// PlayAll runs Play for every bot in spawn order.
func (m *Manager) PlayAll(game Engine) map[redhand.PlayerID][]Decision {
	out := make(map[redhand.PlayerID][]Decision)
	for _, id := range m.IDs() {
		if d := m.Play(game, id); len(d) > 0 {
			out[id] = d
		}
	}
	return out
}

func apply(game Engine, id redhand.PlayerID, d Decision) bool {
	switch d.Kind {
	case ActionChangeCards:
		return game.ChangeCards(id, d.Indices)
	case ActionCheat:
		_, ok := game.CheatCard(id, d.Index, d.Rank, d.Suit)
		return ok
	case ActionBet:
		return game.PlaceBet(id, d.Amount)
	case ActionFold:
		return game.Fold(id)
	case ActionMug:
		return !game.ExecuteMug(id, d.Target).Failed
	case ActionDenounce:
		return game.DenounceCheaters(id, d.Suspects)
	case ActionPredict:
		return game.SetComebackPrediction(id, d.Target)
	}
	return false
}

// GetInstance returns the bot instance for a given player, or nil.
func (m *Manager) GetInstance(id redhand.PlayerID) *NPCInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[id]
}

// IsNPC checks if a player belongs to a bot.
func (m *Manager) IsNPC(id redhand.PlayerID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[id] != nil
}

// IDs returns bot ids in spawn order.
func (m *Manager) IDs() []redhand.PlayerID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]redhand.PlayerID(nil), m.order...)
}

// DespawnNPC removes a bot from tracking.
func (m *Manager) DespawnNPC(id redhand.PlayerID) {
	m.mu.Lock()
	inst := m.instances[id]
	delete(m.instances, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	if inst != nil {
		m.log.WithFields(logrus.Fields{"npc": inst.Name, "player": id}).Info("NPC despawned")
	}
}

// GetThinkDelay returns the simulated thinking delay for a bot.
func (m *Manager) GetThinkDelay(id redhand.PlayerID) time.Duration {
	m.mu.RLock()
	inst := m.instances[id]
	m.mu.RUnlock()
	if inst == nil {
		return time.Second
	}
	return inst.ThinkDelay
}
