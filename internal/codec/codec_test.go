package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redhanded/card"
	"redhanded/redhand"
)

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"type":"change_cards","indices":[0,3,4]}`))
	require.NoError(t, err)
	assert.Equal(t, CmdChangeCards, cmd.Type)
	assert.Equal(t, []int{0, 3, 4}, cmd.Indices)

	cmd, err = DecodeCommand([]byte(`{"type":"bet","amount":25}`))
	require.NoError(t, err)
	assert.Equal(t, int64(25), cmd.Amount)

	cmd, err = DecodeCommand([]byte(`{"type":"cheat","index":2,"rank":"K"}`))
	require.NoError(t, err)
	require.NotNil(t, cmd.Rank)
	assert.Equal(t, card.King, *cmd.Rank)
	assert.Nil(t, cmd.Suit)

	cmd, err = DecodeCommand([]byte(`{"type":"cheat","index":0,"suit":"spades"}`))
	require.NoError(t, err)
	require.NotNil(t, cmd.Suit)
	assert.Equal(t, card.Spade, *cmd.Suit)

	cmd, err = DecodeCommand([]byte(`{"type":"denounce","suspects":["a","b"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cmd.Players)

	cmd, err = DecodeCommand([]byte(`{"type":"add_bot"}`))
	require.NoError(t, err)
	assert.True(t, cmd.Type.HostOnly())
	assert.Empty(t, cmd.Persona)
}

func TestDecodeCommand_Errors(t *testing.T) {
	cases := map[string]error{
		`not json`:                              ErrMalformed,
		`{"amount":5}`:                          ErrMalformed,
		`{"type":"shuffle"}`:                    ErrUnknownCommand,
		`{"type":"bet","amount":2.5}`:           ErrMalformed,
		`{"type":"bet","amount":"10"}`:          ErrMalformed,
		`{"type":"change_cards","indices":"0"}`: ErrMalformed,
		`{"type":"cheat","index":1,"rank":"Z"}`: ErrMalformed,
		`{"type":"mug"}`:                        ErrMalformed,
		`{"type":"denounce","suspects":[1,2]}`:  ErrMalformed,
		`{"type":"join","name":""}`:             ErrMalformed,
	}
	for raw, want := range cases {
		_, err := DecodeCommand([]byte(raw))
		assert.ErrorIs(t, err, want, raw)
	}
}

func TestEncodeCommand_RoundTrip(t *testing.T) {
	king := card.King
	in := []Command{
		{Type: CmdJoin, Name: "Mae"},
		{Type: CmdCheat, Index: 3, Rank: &king},
		{Type: CmdPunish, Players: []string{"p1"}},
		{Type: CmdFold},
	}
	for _, cmd := range in {
		raw, err := EncodeCommand(cmd)
		require.NoError(t, err)
		out, err := DecodeCommand(raw)
		require.NoError(t, err)
		assert.Equal(t, cmd, out)
	}
}

func TestEncodeSnapshot(t *testing.T) {
	cfg := redhand.DefaultConfig()
	cfg.Seed = 3
	g, err := redhand.NewGame(cfg)
	require.NoError(t, err)
	_, err = g.Join("p1", "Ann")
	require.NoError(t, err)
	_, err = g.Join("p2", "Bob")
	require.NoError(t, err)
	require.NoError(t, g.StartGame())

	raw, err := EncodeSnapshot(7, g.Snapshot().Redacted("p1"), "conn-1")
	require.NoError(t, err)

	var msg struct {
		Type string  `json:"type"`
		Seq  float64 `json:"seq"`
		Data struct {
			Phase      string  `json:"phase"`
			Pot        float64 `json:"pot"`
			Controller string  `json:"controller"`
			Deadline   string  `json:"bettingDeadline"`
			Players    []struct {
				ID   string   `json:"id"`
				Hand []string `json:"hand"`
				Gold float64  `json:"gold"`
			} `json:"players"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, MsgSnapshot, msg.Type)
	assert.Equal(t, float64(7), msg.Seq)
	assert.Equal(t, "betting", msg.Data.Phase)
	assert.Equal(t, float64(2), msg.Data.Pot)
	assert.Equal(t, "conn-1", msg.Data.Controller)
	assert.NotEmpty(t, msg.Data.Deadline)
	require.Len(t, msg.Data.Players, 2)
	assert.Len(t, msg.Data.Players[0].Hand, redhand.HandSize)
	assert.Empty(t, msg.Data.Players[1].Hand, "other hands must be hidden")
	assert.Equal(t, float64(99), msg.Data.Players[1].Gold)
}

func TestEncodeNotice(t *testing.T) {
	raw, err := EncodeNotice(1, NoticeBotched, "caught")
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, MsgNotice, msg["type"])
	data := msg["data"].(map[string]any)
	assert.Equal(t, NoticeBotched, data["kind"])
}
