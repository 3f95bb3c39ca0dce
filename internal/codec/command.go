package codec

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"redhanded/card"
)

// CommandType names a client command on the wire.
type CommandType string

const (
	CmdJoin        CommandType = "join"
	CmdChangeCards CommandType = "change_cards"
	CmdBet         CommandType = "bet"
	CmdFold        CommandType = "fold"
	CmdCheat       CommandType = "cheat"
	CmdMug         CommandType = "mug"
	CmdDenounce    CommandType = "denounce"
	CmdPredict     CommandType = "predict"
	CmdTick        CommandType = "tick"

	// host only
	CmdStartGame       CommandType = "start_game"
	CmdEndBetting      CommandType = "end_betting"
	CmdNewRound        CommandType = "new_round"
	CmdEndGame         CommandType = "end_game"
	CmdNewGame         CommandType = "new_game"
	CmdResetPlayers    CommandType = "reset_players"
	CmdPunish          CommandType = "punish"
	CmdClearSuspicions CommandType = "clear_suspicions"
	CmdAddBot          CommandType = "add_bot"
)

var hostCommands = map[CommandType]bool{
	CmdStartGame:       true,
	CmdEndBetting:      true,
	CmdNewRound:        true,
	CmdEndGame:         true,
	CmdNewGame:         true,
	CmdResetPlayers:    true,
	CmdPunish:          true,
	CmdClearSuspicions: true,
	CmdAddBot:          true,
}

var knownCommands = map[CommandType]bool{
	CmdJoin:        true,
	CmdChangeCards: true,
	CmdBet:         true,
	CmdFold:        true,
	CmdCheat:       true,
	CmdMug:         true,
	CmdDenounce:    true,
	CmdPredict:     true,
	CmdTick:        true,
}

// HostOnly reports whether t requires the host token.
func (t CommandType) HostOnly() bool { return hostCommands[t] }

var (
	ErrMalformed      = errors.New("malformed command")
	ErrUnknownCommand = errors.New("unknown command")
)

// Command is a decoded client message. Only the fields of its Type are set.
type Command struct {
	Type CommandType

	Name     string
	Indices  []int
	Amount   int64
	Index    int
	Rank     *card.Rank
	Suit     *card.Suit
	Target   string   // mug victim or comeback prediction
	Players  []string // denounce suspects or punish accused
	Persona  string
}

// DecodeCommand parses a JSON command such as {"type":"bet","amount":10}.
func DecodeCommand(data []byte) (Command, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return commandFromStruct(&s)
}

func commandFromStruct(s *structpb.Struct) (Command, error) {
	f := fields{s.GetFields()}
	typ, err := f.str("type", true)
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Type: CommandType(typ)}
	if !knownCommands[cmd.Type] && !hostCommands[cmd.Type] {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, typ)
	}

	switch cmd.Type {
	case CmdJoin:
		cmd.Name, err = f.str("name", true)
	case CmdChangeCards:
		cmd.Indices, err = f.ints("indices")
	case CmdBet:
		var n int
		n, err = f.int("amount")
		cmd.Amount = int64(n)
	case CmdCheat:
		cmd.Index, cmd.Rank, cmd.Suit, err = f.cheat()
	case CmdMug:
		cmd.Target, err = f.str("victim", true)
	case CmdPredict:
		cmd.Target, err = f.str("target", true)
	case CmdDenounce:
		cmd.Players, err = f.strs("suspects")
	case CmdPunish:
		cmd.Players, err = f.strs("accused")
	case CmdAddBot:
		cmd.Persona, err = f.str("persona", false)
	}
	if err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// EncodeCommand is the inverse of DecodeCommand.
func EncodeCommand(cmd Command) ([]byte, error) {
	m := map[string]any{"type": string(cmd.Type)}
	switch cmd.Type {
	case CmdJoin:
		m["name"] = cmd.Name
	case CmdChangeCards:
		m["indices"] = intsToAny(cmd.Indices)
	case CmdBet:
		m["amount"] = cmd.Amount
	case CmdCheat:
		m["index"] = cmd.Index
		if cmd.Rank != nil {
			m["rank"] = cmd.Rank.String()
		}
		if cmd.Suit != nil {
			m["suit"] = cmd.Suit.Letter()
		}
	case CmdMug:
		m["victim"] = cmd.Target
	case CmdPredict:
		m["target"] = cmd.Target
	case CmdDenounce:
		m["suspects"] = stringsToAny(cmd.Players)
	case CmdPunish:
		m["accused"] = stringsToAny(cmd.Players)
	case CmdAddBot:
		m["persona"] = cmd.Persona
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

type fields struct {
	m map[string]*structpb.Value
}

func (f fields) str(key string, required bool) (string, error) {
	v, ok := f.m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%w: missing %s", ErrMalformed, key)
		}
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || (required && s.StringValue == "") {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrMalformed, key)
	}
	return s.StringValue, nil
}

func (f fields) int(key string) (int, error) {
	v, ok := f.m[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformed, key)
	}
	return toInt(key, v)
}

func (f fields) ints(key string) ([]int, error) {
	v, ok := f.m[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, key)
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %s must be a list", ErrMalformed, key)
	}
	out := make([]int, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		n, err := toInt(key, item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (f fields) strs(key string) ([]string, error) {
	v, ok := f.m[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, key)
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %s must be a list", ErrMalformed, key)
	}
	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: %s must hold strings", ErrMalformed, key)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

// cheat reads index plus exactly one of rank or suit; the engine re-checks.
func (f fields) cheat() (int, *card.Rank, *card.Suit, error) {
	index, err := f.int("index")
	if err != nil {
		return 0, nil, nil, err
	}
	rankStr, err := f.str("rank", false)
	if err != nil {
		return 0, nil, nil, err
	}
	suitStr, err := f.str("suit", false)
	if err != nil {
		return 0, nil, nil, err
	}
	var rank *card.Rank
	var suit *card.Suit
	if rankStr != "" {
		r, err := card.ParseRank(rankStr)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		rank = &r
	}
	if suitStr != "" {
		s, err := card.ParseSuit(suitStr)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		suit = &s
	}
	return index, rank, suit, nil
}

func toInt(key string, v *structpb.Value) (int, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrMalformed, key)
	}
	return int(n.NumberValue), nil
}

func intsToAny(v []int) []any {
	out := make([]any, len(v))
	for i, n := range v {
		out[i] = n
	}
	return out
}

func stringsToAny(v []string) []any {
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}
