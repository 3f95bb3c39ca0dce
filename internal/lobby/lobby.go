// Package lobby keeps the live rooms of the server.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"redhanded/internal/auth"
	"redhanded/internal/config"
	"redhanded/internal/ledger"
	"redhanded/internal/room"
	"redhanded/npc"
	"redhanded/redhand"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrTooManyRooms = errors.New("too many rooms")
)

type Options struct {
	Game        redhand.Config
	Messages    config.Messages
	Personas    *npc.PersonaRegistry
	Ledger      ledger.Service
	Hosts       *auth.HostManager
	MaxRooms    int
	IdleTimeout time.Duration
	Log         logrus.FieldLogger
	Now         func() time.Time
	// Heartbeat is handed to every room; see room.Options.
	Heartbeat time.Duration
}

// Lobby manages all rooms and their host credentials.
type Lobby struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
	opts  Options
	log   logrus.FieldLogger
}

// RoomInfo is the public listing entry of a room.
type RoomInfo struct {
	ID          string `json:"id"`
	Phase       string `json:"phase"`
	Round       int    `json:"round"`
	Players     int    `json:"players"`
	Connections int    `json:"connections"`
}

func New(opts Options) *Lobby {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Hosts == nil {
		opts.Hosts = auth.NewHostManager()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Lobby{
		rooms: make(map[string]*room.Room),
		opts:  opts,
		log:   opts.Log.WithField("component", "lobby"),
	}
}

// CreateRoom opens a room guarded by passcode and returns its id and a host
// token.
func (l *Lobby) CreateRoom(passcode string) (roomID, hostToken string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.opts.MaxRooms > 0 && len(l.rooms) >= l.opts.MaxRooms {
		return "", "", ErrTooManyRooms
	}
	roomID = uuid.NewString()
	hostToken, err = l.opts.Hosts.Register(roomID, passcode)
	if err != nil {
		return "", "", err
	}

	r, err := room.New(roomID, room.Options{
		Game:      l.opts.Game,
		Messages:  l.opts.Messages,
		Personas:  l.opts.Personas,
		Log:       l.opts.Log,
		Now:       l.opts.Now,
		Heartbeat: l.opts.Heartbeat,
	})
	if err != nil {
		l.opts.Hosts.Forget(roomID)
		return "", "", fmt.Errorf("create room: %w", err)
	}
	if l.opts.Ledger != nil {
		r.AddRoundHook(ledger.Hook(l.opts.Ledger, l.log))
	}
	l.rooms[roomID] = r

	l.log.WithFields(logrus.Fields{"room": roomID, "rooms": len(l.rooms)}).Info("room opened")
	return roomID, hostToken, nil
}

// HostLogin issues another host token for an existing room.
func (l *Lobby) HostLogin(roomID, passcode string) (string, error) {
	if l.Get(roomID) == nil {
		return "", ErrRoomNotFound
	}
	return l.opts.Hosts.Login(roomID, passcode)
}

// IsHost reports whether token is a host session of roomID.
func (l *Lobby) IsHost(roomID, token string) bool {
	return l.opts.Hosts.IsHost(roomID, token)
}

// Get returns a room by id, or nil.
func (l *Lobby) Get(roomID string) *room.Room {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rooms[roomID]
}

// List returns the open rooms sorted by id.
func (l *Lobby) List() []RoomInfo {
	l.mu.RLock()
	rooms := make([]*room.Room, 0, len(l.rooms))
	for _, r := range l.rooms {
		rooms = append(rooms, r)
	}
	l.mu.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		snap := r.Snapshot()
		out = append(out, RoomInfo{
			ID:          r.ID,
			Phase:       snap.Phase.String(),
			Round:       snap.Round,
			Players:     len(snap.Players),
			Connections: r.ConnCount(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ReapIdle closes rooms that had no connection for the idle timeout and
// returns their ids.
func (l *Lobby) ReapIdle() []string {
	if l.opts.IdleTimeout <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var reaped []string
	for id, r := range l.rooms {
		if !r.IsIdleFor(l.opts.IdleTimeout) {
			continue
		}
		r.Stop()
		delete(l.rooms, id)
		l.opts.Hosts.Forget(id)
		reaped = append(reaped, id)
	}
	sort.Strings(reaped)
	if len(reaped) > 0 {
		l.log.WithField("rooms", reaped).Info("idle rooms closed")
	}
	return reaped
}

// Run reaps idle rooms until ctx is done.
func (l *Lobby) Run(ctx context.Context) {
	if l.opts.IdleTimeout <= 0 {
		return
	}
	interval := l.opts.IdleTimeout / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.ReapIdle()
		}
	}
}

// Close stops every room.
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, r := range l.rooms {
		r.Stop()
		delete(l.rooms, id)
	}
}
