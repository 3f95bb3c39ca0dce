package lobby

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redhanded/internal/auth"
	"redhanded/internal/codec"
	"redhanded/internal/config"
	"redhanded/internal/ledger"
	"redhanded/internal/room"
	"redhanded/redhand"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLobby(t *testing.T, maxRooms int) (*Lobby, *clock, *ledger.MemoryService) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	clk := &clock{now: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)}
	store := ledger.NewMemoryService()
	l := New(Options{
		Game:        redhand.DefaultConfig(),
		Messages:    config.DefaultMessages(),
		Ledger:      store,
		Hosts:       auth.NewHostManager(),
		MaxRooms:    maxRooms,
		IdleTimeout: 10 * time.Minute,
		Log:         log,
		Now:         clk.Now,
		Heartbeat:   -1,
	})
	t.Cleanup(l.Close)
	return l, clk, store
}

func TestCreateRoomAndHostLogin(t *testing.T) {
	l, _, _ := newTestLobby(t, 0)

	id, token, err := l.CreateRoom("secret")
	require.NoError(t, err)
	require.NotNil(t, l.Get(id))
	assert.True(t, l.IsHost(id, token))

	again, err := l.HostLogin(id, "secret")
	require.NoError(t, err)
	assert.True(t, l.IsHost(id, again))

	_, err = l.HostLogin(id, "nope!")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = l.HostLogin("missing", "secret")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, _, err = l.CreateRoom("ab")
	assert.ErrorIs(t, err, auth.ErrInvalidPasscode)
}

func TestCreateRoom_MaxRooms(t *testing.T) {
	l, _, _ := newTestLobby(t, 1)
	_, _, err := l.CreateRoom("secret")
	require.NoError(t, err)
	_, _, err = l.CreateRoom("secret")
	assert.ErrorIs(t, err, ErrTooManyRooms)
}

func TestList(t *testing.T) {
	l, _, _ := newTestLobby(t, 0)
	a, _, _ := l.CreateRoom("secret")
	b, _, _ := l.CreateRoom("secret")

	r := l.Get(a)
	require.NoError(t, r.Submit(room.Event{Type: room.EventConnect, ConnID: "c1", Player: "p1", Name: "Ann", Send: func([]byte) {}}))

	list := l.List()
	require.Len(t, list, 2)
	byID := map[string]RoomInfo{list[0].ID: list[0], list[1].ID: list[1]}
	assert.Equal(t, RoomInfo{ID: a, Phase: "lobby", Players: 1, Connections: 1}, byID[a])
	assert.Equal(t, RoomInfo{ID: b, Phase: "lobby"}, byID[b])
}

func TestReapIdle(t *testing.T) {
	l, clk, _ := newTestLobby(t, 0)
	idle, token, _ := l.CreateRoom("secret")
	busy, _, _ := l.CreateRoom("secret")
	require.NoError(t, l.Get(busy).Submit(room.Event{Type: room.EventConnect, ConnID: "c1", Send: func([]byte) {}}))

	clk.Advance(5 * time.Minute)
	assert.Empty(t, l.ReapIdle())

	clk.Advance(6 * time.Minute)
	assert.Equal(t, []string{idle}, l.ReapIdle())
	assert.Nil(t, l.Get(idle))
	assert.NotNil(t, l.Get(busy))
	assert.False(t, l.IsHost(idle, token))
}

func TestRoomSettlementReachesLedger(t *testing.T) {
	l, _, store := newTestLobby(t, 0)
	id, _, _ := l.CreateRoom("secret")
	r := l.Get(id)

	noop := func([]byte) {}
	require.NoError(t, r.Submit(room.Event{Type: room.EventConnect, ConnID: "host", Host: true, Send: noop}))
	require.NoError(t, r.Submit(room.Event{Type: room.EventConnect, ConnID: "c1", Player: "p1", Name: "Ann", Send: noop}))
	require.NoError(t, r.Submit(room.Event{Type: room.EventConnect, ConnID: "c2", Player: "p2", Name: "Ben", Send: noop}))
	for _, cmd := range []struct {
		conn string
		cmd  codec.Command
	}{
		{"host", codec.Command{Type: codec.CmdStartGame}},
		{"c1", codec.Command{Type: codec.CmdBet, Amount: 5}},
		{"c2", codec.Command{Type: codec.CmdBet, Amount: 5}},
		{"host", codec.Command{Type: codec.CmdEndBetting}},
	} {
		require.NoError(t, r.Submit(room.Event{Type: room.EventCommand, ConnID: cmd.conn, Command: cmd.cmd}))
	}

	require.Eventually(t, func() bool {
		recs, err := store.ListRecent(context.Background(), id, 10)
		return err == nil && len(recs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
