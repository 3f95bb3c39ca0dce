// Package room runs one game session as an actor: every connection event and
// command goes through a single mailbox and is applied in order.
package room

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"redhanded/internal/codec"
	"redhanded/internal/config"
	"redhanded/internal/election"
	"redhanded/internal/ledger"
	"redhanded/npc"
	"redhanded/redhand"
)

var (
	ErrRoomClosed  = errors.New("room closed")
	ErrNotHost     = errors.New("host only command")
	ErrRejected    = errors.New("command rejected")
	ErrUnknownConn = errors.New("unknown connection")
	ErrNoPlayer    = errors.New("connection has no player")
)

const heartbeat = 500 * time.Millisecond

// Room owns one redhand.Game and the connections watching it.
type Room struct {
	ID string

	mu       sync.RWMutex
	game     *redhand.Game
	bots     *npc.Manager
	tracker  *election.Tracker
	conns    map[string]*Conn
	messages config.Messages
	log      logrus.FieldLogger
	now      func() time.Time

	closed   bool
	stopOnce sync.Once
	events   chan Event
	done     chan struct{}

	seq        uint64
	dirty      bool
	emptySince time.Time

	// phase bookkeeping for bot pacing
	phaseKey   phaseKey
	phaseSince time.Time

	roundHooks []RoundHook
}

type phaseKey struct {
	phase redhand.Phase
	round int
}

// Conn is one live client attached to the room. Player is empty for a
// presenter screen.
type Conn struct {
	ID     string
	Player redhand.PlayerID
	Host   bool
	send   func([]byte)
}

type EventType int

const (
	EventConnect EventType = iota
	EventDisconnect
	EventCommand
	EventTick
	EventClose
)

// Event is a message to the room actor.
type Event struct {
	Type      EventType
	ConnID    string
	Player    redhand.PlayerID
	Name      string
	Host      bool
	Send      func([]byte)
	Command   codec.Command
	Timestamp time.Time
	Response  chan error
}

// RoundHook receives the audit record of every settlement and punishment.
type RoundHook func(rec ledger.RoundRecord)

type Options struct {
	Game     redhand.Config
	Messages config.Messages
	Personas *npc.PersonaRegistry
	Log      logrus.FieldLogger
	Now      func() time.Time
	// Heartbeat 0 uses the default; a negative value disables the ticker so
	// ticks only arrive as events.
	Heartbeat time.Duration
}

// New creates the room and starts its actor.
func New(id string, opts Options) (*Room, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("room", id)
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	cfg := opts.Game
	if cfg.Logger == nil {
		cfg.Logger = log
	}
	if cfg.Now == nil {
		cfg.Now = now
	}
	game, err := redhand.NewGame(cfg)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	r := &Room{
		ID:         id,
		game:       game,
		bots:       npc.NewManager(opts.Personas, cfg.Seed, log),
		tracker:    election.NewTracker(),
		conns:      make(map[string]*Conn),
		messages:   opts.Messages,
		log:        log,
		now:        now,
		events:     make(chan Event, 256),
		done:       make(chan struct{}),
		emptySince: now(),
	}
	r.markPhaseLocked(now())

	interval := opts.Heartbeat
	if interval == 0 {
		interval = heartbeat
	}
	go r.run(interval)

	log.Info("room created")
	return r, nil
}

func (r *Room) run(interval time.Duration) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case event := <-r.events:
			err := r.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-tick:
			r.handleEvent(Event{Type: EventTick, Timestamp: r.now()})
		case <-r.done:
			r.log.Info("room actor stopped")
			return
		}
	}
}

func (r *Room) handleEvent(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed && e.Type != EventClose {
		return ErrRoomClosed
	}

	var err error
	switch e.Type {
	case EventConnect:
		err = r.handleConnect(e)
	case EventDisconnect:
		err = r.handleDisconnect(e.ConnID)
	case EventCommand:
		err = r.handleCommand(e.ConnID, e.Command, e.Timestamp)
	case EventTick:
		r.tickLocked(e.Timestamp, "")
	case EventClose:
		r.stopLocked()
		return nil
	default:
		err = fmt.Errorf("unknown event type: %d", e.Type)
	}

	r.markPhaseLocked(e.Timestamp)
	if r.dirty {
		r.broadcastSnapshotsLocked()
		r.dirty = false
	}
	return err
}

func (r *Room) handleConnect(e Event) error {
	if e.ConnID == "" || e.Send == nil {
		return fmt.Errorf("connect: missing connection")
	}
	c := &Conn{ID: e.ConnID, Player: e.Player, Host: e.Host, send: e.Send}
	r.conns[c.ID] = c
	r.emptySince = time.Time{}
	controller, changed := r.tracker.Join(c.ID)
	if changed {
		r.log.WithField("controller", controller).Debug("controller elected")
	}

	if c.Player != "" {
		if e.Name != "" {
			if _, err := r.game.Join(c.Player, e.Name); err != nil {
				r.noticeLocked(c, codec.NoticeError, err.Error())
			}
		} else {
			r.game.Attach(c.Player)
		}
	}

	r.sendWelcomeLocked(c)
	r.dirty = true
	r.log.WithFields(logrus.Fields{"conn": c.ID, "player": c.Player, "host": c.Host}).Info("connection attached")
	return nil
}

func (r *Room) handleDisconnect(connID string) error {
	c, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)
	controller, changed := r.tracker.Leave(connID)
	if changed {
		r.log.WithField("controller", controller).Debug("controller re-elected")
	}

	if c.Player != "" && !r.playerConnectedLocked(c.Player) {
		r.game.Detach(c.Player)
	}
	if len(r.conns) == 0 {
		r.emptySince = r.now()
	}
	r.dirty = true
	r.log.WithField("conn", connID).Info("connection detached")
	return nil
}

func (r *Room) playerConnectedLocked(id redhand.PlayerID) bool {
	for _, c := range r.conns {
		if c.Player == id {
			return true
		}
	}
	return false
}

// tickLocked is the controller heartbeat: bots act once their think delay has
// passed, and betting closes when its deadline lapses. Nothing happens while
// no controller is connected. by, when set, is the conn that asked.
func (r *Room) tickLocked(now time.Time, by string) {
	controller, ok := r.tracker.Controller()
	if !ok || (by != "" && by != controller) {
		return
	}
	if now.IsZero() {
		now = r.now()
	}
	r.markPhaseLocked(now)
	if r.playBotsLocked(now) {
		r.dirty = true
	}
	if r.game.BettingElapsed(now) {
		r.log.Info("betting time elapsed")
		r.endBettingLocked(now)
	}
}

func (r *Room) playBotsLocked(now time.Time) bool {
	acted := false
	for _, id := range r.bots.IDs() {
		if now.Sub(r.phaseSince) < r.bots.GetThinkDelay(id) {
			continue
		}
		if len(r.bots.Play(r.game, id)) > 0 {
			acted = true
		}
	}
	return acted
}

func (r *Room) markPhaseLocked(now time.Time) {
	if now.IsZero() {
		now = r.now()
	}
	s := r.game.Snapshot()
	key := phaseKey{phase: s.Phase, round: s.Round}
	if key != r.phaseKey || r.phaseSince.IsZero() {
		r.phaseKey = key
		r.phaseSince = now
	}
}

// Submit sends an event to the actor and waits for it to be applied.
func (r *Room) Submit(e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return ErrRoomClosed
	}

	select {
	case r.events <- e:
	case <-r.done:
		return ErrRoomClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Stop shuts down the room actor.
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Room) stopLocked() {
	r.closed = true
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

// IsIdleFor reports whether the room has had no connections for ttl.
func (r *Room) IsIdleFor(ttl time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return true
	}
	if len(r.conns) > 0 || r.emptySince.IsZero() {
		return false
	}
	return r.now().Sub(r.emptySince) >= ttl
}

func (r *Room) IsClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Snapshot returns the unredacted game state.
func (r *Room) Snapshot() redhand.Snapshot {
	return r.game.Snapshot()
}

// Controller returns the elected connection id, if any.
func (r *Room) Controller() (string, bool) {
	return r.tracker.Controller()
}

// ConnCount is the number of live connections.
func (r *Room) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// AddRoundHook registers a callback for settlement and punishment records.
func (r *Room) AddRoundHook(hook RoundHook) {
	if hook == nil {
		return
	}
	r.mu.Lock()
	r.roundHooks = append(r.roundHooks, hook)
	r.mu.Unlock()
}

func (r *Room) dispatchRoundHooksLocked(rec ledger.RoundRecord) {
	if len(r.roundHooks) == 0 {
		return
	}
	hooks := append([]RoundHook(nil), r.roundHooks...)
	for _, hook := range hooks {
		go func(cb RoundHook) {
			defer func() {
				if p := recover(); p != nil {
					r.log.WithField("panic", p).Error("round hook panic")
				}
			}()
			cb(rec)
		}(hook)
	}
}
