package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sqlStore implements Service over database/sql for both drivers. Queries are
// written with ? placeholders and rebound for Postgres.
type sqlStore struct {
	db       *sql.DB
	postgres bool
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlStore) AppendRound(ctx context.Context, rec RoundRecord) error {
	if strings.TrimSpace(rec.RoomID) == "" {
		return fmt.Errorf("append round: empty room id")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	winners, err := json.Marshal(rec.Winners)
	if err != nil {
		return err
	}
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO round_ledger (
    room_id, round, kind, pot, winners_json, rounding_loss, players_json, recorded_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`), rec.RoomID, rec.Round, string(rec.Kind), rec.Pot, string(winners), rec.RoundingLoss, string(players), rec.RecordedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert round record: %w", err)
	}
	return nil
}

func (s *sqlStore) ListRecent(ctx context.Context, roomID string, limit int) ([]RoundRecord, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, ErrNotFound
	}
	limit = clampLimit(limit)
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT room_id, round, kind, pot, winners_json, rounding_loss, players_json, recorded_at_ms
FROM round_ledger
WHERE room_id = ?
ORDER BY recorded_at_ms DESC, id DESC
LIMIT ?
`), roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]RoundRecord, 0, limit)
	for rows.Next() {
		var rec RoundRecord
		var kind, winnersRaw, playersRaw string
		var recordedAtMs int64
		if err := rows.Scan(&rec.RoomID, &rec.Round, &kind, &rec.Pot, &winnersRaw, &rec.RoundingLoss, &playersRaw, &recordedAtMs); err != nil {
			return nil, err
		}
		rec.Kind = Kind(kind)
		rec.RecordedAt = time.UnixMilli(recordedAtMs).UTC()
		_ = json.Unmarshal([]byte(winnersRaw), &rec.Winners)
		_ = json.Unmarshal([]byte(playersRaw), &rec.Players)
		if rec.Winners == nil {
			rec.Winners = []string{}
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (s *sqlStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
