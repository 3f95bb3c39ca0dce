package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redhanded/internal/config"
	"redhanded/internal/lobby"
	"redhanded/redhand"
)

func newTestServer(t *testing.T) (*httptest.Server, *lobby.Lobby) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	lby := lobby.New(lobby.Options{
		Game:      redhand.DefaultConfig(),
		Messages:  config.DefaultMessages(),
		Log:       log,
		Heartbeat: -1,
	})
	t.Cleanup(lby.Close)

	gw := New(lby, log)
	srv := httptest.NewServer(http.HandlerFunc(gw.HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv, lby
}

func dial(t *testing.T, srv *httptest.Server, params url.Values) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + params.Encode()
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

// next reads messages until one of msgType arrives and returns its data.
func next(t *testing.T, ws *websocket.Conn, msgType string, match func(map[string]any) bool) map[string]any {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, raw, err := ws.ReadMessage()
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		if m["type"] != msgType {
			continue
		}
		data, _ := m["data"].(map[string]any)
		if match == nil || match(data) {
			return data
		}
	}
}

func TestHandleWebSocket_PlayAndHost(t *testing.T) {
	srv, lby := newTestServer(t)
	roomID, token, err := lby.CreateRoom("secret")
	require.NoError(t, err)

	host := dial(t, srv, url.Values{"room": {roomID}, "token": {token}})
	welcome := next(t, host, "welcome", nil)
	assert.Equal(t, true, welcome["host"])

	alice := dial(t, srv, url.Values{"room": {roomID}, "player": {"a"}, "name": {"Alice"}})
	welcome = next(t, alice, "welcome", nil)
	assert.Equal(t, "a", welcome["player"])
	assert.Equal(t, false, welcome["host"])
	bob := dial(t, srv, url.Values{"room": {roomID}, "player": {"b"}, "name": {"Bob"}})
	next(t, bob, "welcome", nil)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"start_game"}`)))
	notice := next(t, alice, "notice", nil)
	assert.Equal(t, "rejected", notice["kind"])

	require.NoError(t, host.WriteMessage(websocket.TextMessage, []byte(`{"type":"start_game"}`)))
	snap := next(t, alice, "snapshot", func(d map[string]any) bool { return d["phase"] == "betting" })
	assert.Len(t, snap["players"], 2)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"bet","amount":10}`)))
	next(t, bob, "snapshot", func(d map[string]any) bool {
		for _, raw := range d["players"].([]any) {
			p := raw.(map[string]any)
			if p["id"] == "a" && p["bet"] == float64(10) {
				return true
			}
		}
		return false
	})
}

func TestHandleWebSocket_MalformedCommand(t *testing.T) {
	srv, lby := newTestServer(t)
	roomID, _, err := lby.CreateRoom("secret")
	require.NoError(t, err)

	ws := dial(t, srv, url.Values{"room": {roomID}, "player": {"a"}, "name": {"Alice"}})
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":`)))
	notice := next(t, ws, "notice", nil)
	assert.Equal(t, "error", notice["kind"])
}

func TestHandleWebSocket_Rejections(t *testing.T) {
	srv, lby := newTestServer(t)
	roomID, _, err := lby.CreateRoom("secret")
	require.NoError(t, err)

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?"
	_, resp, err := websocket.DefaultDialer.Dial(base+"room=missing", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+url.Values{"room": {roomID}, "token": {"forged"}}.Encode(), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDisconnectDetachesPlayer(t *testing.T) {
	srv, lby := newTestServer(t)
	roomID, _, err := lby.CreateRoom("secret")
	require.NoError(t, err)

	ws := dial(t, srv, url.Values{"room": {roomID}, "player": {"a"}, "name": {"Alice"}})
	next(t, ws, "welcome", nil)
	ws.Close()

	rm := lby.Get(roomID)
	require.Eventually(t, func() bool {
		return rm.ConnCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
	players := rm.Snapshot().Players
	require.Len(t, players, 1)
	assert.False(t, players[0].Attached)
}
