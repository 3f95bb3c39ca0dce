// Package ledger keeps the audit history of settled rounds and punishments.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"redhanded/card"
	"redhanded/redhand"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
	// memoryKeepPerRoom bounds the in-memory history of one room.
	memoryKeepPerRoom = 500
)

type Kind string

const (
	KindSettlement Kind = "settlement"
	KindPunishment Kind = "punishment"
)

var ErrNotFound = errors.New("not found")

type Service interface {
	Close() error
	AppendRound(ctx context.Context, rec RoundRecord) error
	ListRecent(ctx context.Context, roomID string, limit int) ([]RoundRecord, error)
}

// RoundRecord is one audited event of a room: a settlement or a punishment.
type RoundRecord struct {
	RoomID       string       `json:"room_id"`
	Round        int          `json:"round"`
	Kind         Kind         `json:"kind"`
	Pot          int64        `json:"pot"`
	Winners      []string     `json:"winners"`
	RoundingLoss int64        `json:"rounding_loss"`
	Players      []PlayerLine `json:"players"`
	RecordedAt   time.Time    `json:"recorded_at"`
}

type PlayerLine struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Hand     string `json:"hand,omitempty"`
	HandName string `json:"hand_name,omitempty"`
	Wagered  int64  `json:"wagered,omitempty"`
	Won      int64  `json:"won,omitempty"`
	Gold     int64  `json:"gold"`
	Cheated  bool   `json:"cheated,omitempty"`
	Punished bool   `json:"punished,omitempty"`
}

// FromSettlement builds the record of a settled round. Cheat flags come from
// the snapshot taken in the same transaction.
func FromSettlement(roomID string, res *redhand.SettlementResult, snap redhand.Snapshot, at time.Time) RoundRecord {
	cheated := make(map[redhand.PlayerID]bool, len(snap.Players))
	for _, p := range snap.Players {
		cheated[p.ID] = p.Cheated
	}
	rec := RoundRecord{
		RoomID:       roomID,
		Round:        res.Round,
		Kind:         KindSettlement,
		Pot:          res.Pot,
		Winners:      idStrings(res.Winners),
		RoundingLoss: res.RoundingLoss + res.BonusRoundingLoss,
		RecordedAt:   at.UTC(),
	}
	for _, p := range res.Players {
		line := PlayerLine{
			ID:      string(p.ID),
			Name:    p.Name,
			Wagered: p.Wagered,
			Won:     p.Won + p.EliminationBonus,
			Gold:    p.GoldAfter,
			Cheated: cheated[p.ID],
		}
		if len(p.Hand) > 0 && !p.Folded {
			line.Hand = card.CardList(p.Hand).String()
			line.HandName = p.HandName
		}
		rec.Players = append(rec.Players, line)
	}
	return rec
}

func FromPunishment(roomID string, res *redhand.PunishmentResult, at time.Time) RoundRecord {
	rec := RoundRecord{
		RoomID:       roomID,
		Round:        res.Round,
		Kind:         KindPunishment,
		Pot:          res.Confiscated,
		Winners:      idStrings(res.Recipients),
		RoundingLoss: res.RoundingLoss,
		RecordedAt:   at.UTC(),
	}
	for _, a := range res.Accused {
		rec.Players = append(rec.Players, PlayerLine{
			ID:       string(a.ID),
			Gold:     a.GoldAfter,
			Cheated:  a.Cheated,
			Punished: true,
		})
	}
	return rec
}

func idStrings(ids []redhand.PlayerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

type noopService struct{}

func (n *noopService) Close() error { return nil }

func (n *noopService) AppendRound(_ context.Context, _ RoundRecord) error { return nil }

func (n *noopService) ListRecent(_ context.Context, _ string, _ int) ([]RoundRecord, error) {
	return []RoundRecord{}, nil
}

// MemoryService keeps the latest records of each room in process.
type MemoryService struct {
	mu     sync.RWMutex
	byRoom map[string][]RoundRecord
}

func NewMemoryService() *MemoryService {
	return &MemoryService{byRoom: make(map[string][]RoundRecord)}
}

func (m *MemoryService) Close() error { return nil }

func (m *MemoryService) AppendRound(_ context.Context, rec RoundRecord) error {
	if strings.TrimSpace(rec.RoomID) == "" {
		return fmt.Errorf("append round: empty room id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.byRoom[rec.RoomID], rec)
	if len(list) > memoryKeepPerRoom {
		list = list[len(list)-memoryKeepPerRoom:]
	}
	m.byRoom[rec.RoomID] = list
	return nil
}

func (m *MemoryService) ListRecent(_ context.Context, roomID string, limit int) ([]RoundRecord, error) {
	limit = clampLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	list, ok := m.byRoom[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]RoundRecord, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Mode names accepted by NewService.
const (
	ModeNoop     = "noop"
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"
)

// NewService opens the store for mode. dsn is the SQLite path or the Postgres
// connection string.
func NewService(mode, dsn string) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeNoop:
		return &noopService{}, nil
	case "", ModeMemory:
		return NewMemoryService(), nil
	case ModeSQLite:
		return NewSQLiteService(dsn)
	case ModePostgres:
		return NewPostgresService(dsn)
	}
	return nil, fmt.Errorf("invalid ledger mode %q", mode)
}

// Hook returns a recorder that appends rec with a bounded timeout, logging
// failures instead of returning them.
func Hook(svc Service, log logrus.FieldLogger) func(RoundRecord) {
	return func(rec RoundRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := svc.AppendRound(ctx, rec); err != nil {
			log.WithError(err).WithFields(logrus.Fields{"room": rec.RoomID, "round": rec.Round}).Warn("ledger append failed")
		}
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}
