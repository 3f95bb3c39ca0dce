package codec

import (
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"redhanded/card"
	"redhanded/redhand"
)

// Server message types.
const (
	MsgSnapshot   = "snapshot"
	MsgNotice     = "notice"
	MsgSettlement = "settlement"
	MsgPunishment = "punishment"
	MsgWelcome    = "welcome"
)

// Notice kinds sent privately to one player.
const (
	NoticeBotched     = "botched"
	NoticeMugFailed   = "mug_failed"
	NoticeMugRejected = "mug_rejected"
	NoticeMugged      = "mugged"
	NoticeBonus       = "bonus"
	NoticeComeback    = "comeback"
	NoticePunished    = "punished"
	NoticeRejected    = "rejected"
	NoticeError       = "error"
)

// SnapshotStruct converts a snapshot to a protobuf Struct. Callers redact
// hands before encoding; controller is the elected connection, if any.
func SnapshotStruct(s redhand.Snapshot, controller string) (*structpb.Struct, error) {
	players := make([]any, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, playerMap(p))
	}
	suspects := make([]any, 0, len(s.SuspectedCheaters))
	for _, sc := range s.SuspectedCheaters {
		suspects = append(suspects, map[string]any{
			"suspect":  string(sc.Suspect),
			"accusers": idsToAny(sc.Accusers),
		})
	}

	m := map[string]any{
		"phase":                   s.Phase.String(),
		"round":                   s.Round,
		"pot":                     s.Pot,
		"winners":                 idsToAny(s.Winners),
		"punishmentUsedThisRound": s.PunishmentUsedThisRound,
		"suspectedCheaters":       suspects,
		"losingPlayersLastRound":  idsToAny(s.LosingPlayersLastRound),
		"worstPerformerLastRound": string(s.WorstPerformerLastRound),
		"numDecks":                s.NumDecks,
		"poolSize":                s.PoolSize,
		"minimalBet":              s.MinimalBet,
		"betIncrementSmall":       s.BetIncrementSmall,
		"betIncrementLarge":       s.BetIncrementLarge,
		"controller":              controller,
		"players":                 players,
	}
	if !s.BettingDeadline.IsZero() {
		m["bettingStartedAt"] = s.BettingStartedAt.UTC().Format(time.RFC3339Nano)
		m["bettingDeadline"] = s.BettingDeadline.UTC().Format(time.RFC3339Nano)
	}
	return structpb.NewStruct(m)
}

func playerMap(p redhand.PlayerSnapshot) map[string]any {
	m := map[string]any{
		"id":                        string(p.ID),
		"name":                      p.Name,
		"attached":                  p.Attached,
		"gold":                      p.Gold,
		"bet":                       p.Bet,
		"ante":                      p.Ante,
		"wagered":                   p.Wagered,
		"folded":                    p.Folded,
		"cheated":                   p.Cheated,
		"accusedOfCheating":         p.AccusedOfCheating,
		"wronglyAccused":            p.WronglyAccused,
		"receivedRedistributedGold": p.ReceivedRedistributedGold,
		"changedCards":              p.ChangedCards,
		"refreshCount":              p.RefreshCount,
		"botchedCheating":           p.BotchedCheating,
		"eliminated":                p.Eliminated,
		"receivedEliminationBonus":  p.ReceivedEliminationBonus,
		"hasMugged":                 p.HasMugged,
		"mugFailed":                 p.MugFailed,
		"muggedAmount":              p.MuggedAmount,
		"inComebackMode":            p.InComebackMode,
		"hasComebackPrediction":     p.HasComebackPrediction,
		"justReturnedFromComeback":  p.JustReturnedFromComeback,
		"failedComebackPrediction":  p.FailedComebackPrediction,
		"allPlayersFolded":          p.AllPlayersFolded,
		"cheatTip":                  p.CheatTip,
	}
	if len(p.Hand) > 0 {
		m["hand"] = cardsToAny(p.Hand)
		m["handRank"] = int(p.HandRank)
		m["handName"] = p.HandName
	}
	if p.MugVictim != "" {
		m["mugVictim"] = string(p.MugVictim)
	}
	if p.ComebackPrediction != "" {
		m["comebackPrediction"] = string(p.ComebackPrediction)
	}
	return m
}

// SettlementStruct converts a round result. Hands are included: settlement is
// broadcast only once betting has closed.
func SettlementStruct(r *redhand.SettlementResult) (*structpb.Struct, error) {
	players := make([]any, 0, len(r.Players))
	for _, p := range r.Players {
		pm := map[string]any{
			"id":               string(p.ID),
			"name":             p.Name,
			"handRank":         int(p.HandRank),
			"handName":         p.HandName,
			"wagered":          p.Wagered,
			"won":              p.Won,
			"isWinner":         p.IsWinner,
			"folded":           p.Folded,
			"eliminated":       p.Eliminated,
			"eliminationBonus": p.EliminationBonus,
			"goldAfter":        p.GoldAfter,
		}
		if !p.Folded {
			pm["hand"] = cardsToAny(p.Hand)
		}
		players = append(players, pm)
	}
	muggings := make([]any, 0, len(r.Muggings))
	for _, mo := range r.Muggings {
		muggings = append(muggings, map[string]any{
			"mugger": string(mo.Mugger),
			"victim": string(mo.Victim),
			"amount": mo.Amount,
			"failed": mo.Failed,
		})
	}
	return structpb.NewStruct(map[string]any{
		"round":        r.Round,
		"pot":          r.Pot,
		"winners":      idsToAny(r.Winners),
		"share":        r.Share,
		"roundingLoss": r.RoundingLoss,
		"forfeited":    r.Forfeited,
		"eliminated":   idsToAny(r.Eliminated),
		"bonusShare":   r.BonusShare,
		"players":      players,
		"muggings":     muggings,
	})
}

func PunishmentStruct(r *redhand.PunishmentResult) (*structpb.Struct, error) {
	accused := make([]any, 0, len(r.Accused))
	for _, a := range r.Accused {
		accused = append(accused, map[string]any{
			"id":         string(a.ID),
			"cheated":    a.Cheated,
			"goldBefore": a.GoldBefore,
			"goldAfter":  a.GoldAfter,
		})
	}
	return structpb.NewStruct(map[string]any{
		"round":        r.Round,
		"accused":      accused,
		"confiscated":  r.Confiscated,
		"recipients":   idsToAny(r.Recipients),
		"share":        r.Share,
		"roundingLoss": r.RoundingLoss,
	})
}

// Envelope wraps a payload as {"type": ..., "seq": ..., "data": ...}.
func Envelope(msgType string, seq uint64, data *structpb.Struct) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"type": structpb.NewStringValue(msgType),
		"seq":  structpb.NewNumberValue(float64(seq)),
	}
	if data != nil {
		fields["data"] = structpb.NewStructValue(data)
	}
	return &structpb.Struct{Fields: fields}
}

// EncodeSnapshot renders a snapshot message as JSON.
func EncodeSnapshot(seq uint64, s redhand.Snapshot, controller string) ([]byte, error) {
	data, err := SnapshotStruct(s, controller)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(Envelope(MsgSnapshot, seq, data))
}

// EncodeSettlement renders a settlement message as JSON.
func EncodeSettlement(seq uint64, r *redhand.SettlementResult) ([]byte, error) {
	data, err := SettlementStruct(r)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(Envelope(MsgSettlement, seq, data))
}

func EncodePunishment(seq uint64, r *redhand.PunishmentResult) ([]byte, error) {
	data, err := PunishmentStruct(r)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(Envelope(MsgPunishment, seq, data))
}

// EncodeNotice renders a private notice as JSON.
func EncodeNotice(seq uint64, kind, message string) ([]byte, error) {
	data := &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind":    structpb.NewStringValue(kind),
		"message": structpb.NewStringValue(message),
	}}
	return protojson.Marshal(Envelope(MsgNotice, seq, data))
}

// EncodeWelcome tells a new connection its id and the player it speaks for.
func EncodeWelcome(seq uint64, connID, player string, host bool) ([]byte, error) {
	data := &structpb.Struct{Fields: map[string]*structpb.Value{
		"connId": structpb.NewStringValue(connID),
		"player": structpb.NewStringValue(player),
		"host":   structpb.NewBoolValue(host),
	}}
	return protojson.Marshal(Envelope(MsgWelcome, seq, data))
}

func idsToAny(ids []redhand.PlayerID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func cardsToAny(cards []card.Card) []any {
	out := make([]any, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
