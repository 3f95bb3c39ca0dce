package replay

import (
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"redhanded/card"
	"redhanded/internal/codec"
	"redhanded/redhand"
)

const (
	tapeVersion = 1
	defaultSeed = 1

	EventSnapshot   = codec.MsgSnapshot
	EventSettlement = codec.MsgSettlement
	EventPunishment = codec.MsgPunishment
	EventNotice     = codec.MsgNotice
)

// epoch is the fixed clock the replayed game runs on; each step advances it by
// one second.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Run plays script against a fresh game and records a snapshot after setup and
// after every step. The same script always yields the same tape.
func Run(script Script) (*Tape, error) {
	seed := script.Seed
	if seed == 0 {
		seed = defaultSeed
	}
	clock := epoch
	cfg := tableConfig(script.Table)
	cfg.Seed = seed
	cfg.Now = func() time.Time { return clock }

	game, err := redhand.NewGame(cfg)
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}
	for i, p := range script.Players {
		if _, err := game.Join(redhand.PlayerID(p.ID), p.Name); err != nil {
			return nil, &ReplayError{StepIndex: -1, Reason: "join_failed", Message: fmt.Sprintf("player %d: %v", i, err)}
		}
	}

	b := newTapeBuilder(redhand.PlayerID(script.Hero))
	if err := b.addSnapshot(-1, game); err != nil {
		return nil, err
	}

	for i, step := range script.Steps {
		clock = clock.Add(time.Second)
		idx := int32(i)
		if err := b.apply(idx, game, step); err != nil {
			return nil, err
		}
		if err := b.addSnapshot(idx, game); err != nil {
			return nil, err
		}
	}

	return &Tape{
		TapeVersion: tapeVersion,
		Seed:        seed,
		Hero:        script.Hero,
		Events:      b.events,
	}, nil
}

func tableConfig(t *TableSpec) redhand.Config {
	cfg := redhand.DefaultConfig()
	if t == nil {
		return cfg
	}
	if t.StartingGold > 0 {
		cfg.StartingGold = t.StartingGold
	}
	if t.MinimalBet > 0 {
		cfg.MinimalBet = t.MinimalBet
	}
	if t.EliminationBonus > 0 {
		cfg.EliminationBonus = t.EliminationBonus
	}
	if t.MinPlayers > 0 {
		cfg.MinPlayers = t.MinPlayers
	}
	if t.ComebackGold != nil {
		if *t.ComebackGold < 0 {
			cfg.Comeback = nil
		} else {
			cfg.Comeback = redhand.FixedComeback{Gold: *t.ComebackGold}
		}
	}
	return cfg
}

func (b *tapeBuilder) apply(idx int32, g *redhand.Game, step Step) error {
	id := redhand.PlayerID(step.Player)
	fail := func(reason, msg string) error {
		return &ReplayError{StepIndex: idx, Reason: reason, Message: msg, Phase: g.Phase().String()}
	}
	lifecycle := func(err error) error {
		if err != nil {
			return fail("lifecycle_failed", err.Error())
		}
		return nil
	}
	action := func(ok bool) error {
		if ok {
			return nil
		}
		if step.Optional {
			return b.addNotice(idx, codec.NoticeRejected, fmt.Sprintf("%s by %s rejected", step.Op, step.Player))
		}
		return fail("action_rejected", fmt.Sprintf("%s by %q was rejected", step.Op, step.Player))
	}

	switch step.Op {
	case "join":
		_, err := g.Join(id, step.Name)
		return lifecycle(err)
	case "attach":
		return action(g.Attach(id))
	case "detach":
		return action(g.Detach(id))
	case "start_game":
		return lifecycle(g.StartGame())
	case "new_round":
		return lifecycle(g.StartNewRound())
	case "end_game":
		return lifecycle(g.EndGame())
	case "new_game":
		return lifecycle(g.StartNewGame())
	case "reset_players":
		return lifecycle(g.ResetPlayers())
	case "change_cards":
		return action(g.ChangeCards(id, step.Indices))
	case "bet":
		return action(g.PlaceBet(id, step.Amount))
	case "fold":
		return action(g.Fold(id))
	case "cheat":
		rank, suit, err := parseCheat(step)
		if err != nil {
			return fail("invalid_step", err.Error())
		}
		botched, ok := g.CheatCard(id, step.Index, rank, suit)
		if err := action(ok); err != nil || !botched {
			return err
		}
		return b.addNotice(idx, codec.NoticeBotched, fmt.Sprintf("%s botched a cheat", step.Player))
	case "mug":
		if g.ExecuteMug(id, redhand.PlayerID(step.Target)).Failed {
			return action(false)
		}
		return nil
	case "denounce":
		g.DenounceCheaters(id, toIDs(step.Players))
		return nil
	case "clear_suspicions":
		g.ClearSuspicions()
		return nil
	case "predict":
		return action(g.SetComebackPrediction(id, redhand.PlayerID(step.Target)))
	case "end_betting":
		res, ok := g.EndBettingPhase()
		if !ok {
			return fail("phase_mismatch", "betting is not open")
		}
		data, err := codec.SettlementStruct(res)
		if err != nil {
			return fail("encode_failed", err.Error())
		}
		return b.push(idx, EventSettlement, data)
	case "punish":
		res, ok := g.PunishCheaters(toIDs(step.Players))
		if !ok {
			return fail("punish_rejected", "punishment is not available")
		}
		data, err := codec.PunishmentStruct(res)
		if err != nil {
			return fail("encode_failed", err.Error())
		}
		return b.push(idx, EventPunishment, data)
	}
	return fail("unknown_op", fmt.Sprintf("unknown op %q", step.Op))
}

func parseCheat(step Step) (*card.Rank, *card.Suit, error) {
	if (step.Rank == "") == (step.Suit == "") {
		return nil, nil, fmt.Errorf("cheat needs exactly one of rank or suit")
	}
	if step.Rank != "" {
		r, err := card.ParseRank(step.Rank)
		if err != nil {
			return nil, nil, err
		}
		return &r, nil, nil
	}
	s, err := card.ParseSuit(step.Suit)
	if err != nil {
		return nil, nil, err
	}
	return nil, &s, nil
}

func toIDs(raw []string) []redhand.PlayerID {
	out := make([]redhand.PlayerID, len(raw))
	for i, s := range raw {
		out[i] = redhand.PlayerID(s)
	}
	return out
}

type tapeBuilder struct {
	hero   redhand.PlayerID
	seq    uint64
	events []Event
}

func newTapeBuilder(hero redhand.PlayerID) *tapeBuilder {
	return &tapeBuilder{
		hero:   hero,
		events: make([]Event, 0, 64),
	}
}

func (b *tapeBuilder) addSnapshot(idx int32, g *redhand.Game) error {
	snap := g.Snapshot()
	if b.hero != "" {
		snap = snap.Redacted(b.hero)
	}
	data, err := codec.SnapshotStruct(snap, "")
	if err != nil {
		return &ReplayError{StepIndex: idx, Reason: "encode_failed", Message: err.Error()}
	}
	return b.push(idx, EventSnapshot, data)
}

func (b *tapeBuilder) addNotice(idx int32, kind, msg string) error {
	data := &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind":    structpb.NewStringValue(kind),
		"message": structpb.NewStringValue(msg),
	}}
	return b.push(idx, EventNotice, data)
}

func (b *tapeBuilder) push(idx int32, typ string, data *structpb.Struct) error {
	b.seq++
	env := codec.Envelope(typ, b.seq, data)
	bin, err := proto.MarshalOptions{Deterministic: true}.Marshal(env)
	if err != nil {
		return &ReplayError{StepIndex: idx, Reason: "encode_failed", Message: err.Error()}
	}
	b.events = append(b.events, Event{
		Type:        typ,
		Seq:         b.seq,
		StepIndex:   idx,
		Value:       env,
		EnvelopeB64: base64.StdEncoding.EncodeToString(bin),
	})
	return nil
}
