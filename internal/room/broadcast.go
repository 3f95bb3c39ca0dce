package room

import (
	"redhanded/internal/codec"
	"redhanded/internal/config"
	"redhanded/redhand"
)

func (r *Room) nextSeq() uint64 {
	r.seq++
	return r.seq
}

// broadcastSnapshotsLocked sends every connection the snapshot its player may
// see.
func (r *Room) broadcastSnapshotsLocked() {
	snap := r.game.Snapshot()
	controller, _ := r.tracker.Controller()
	seq := r.nextSeq()
	for _, c := range r.conns {
		data, err := codec.EncodeSnapshot(seq, snap.Redacted(c.Player), controller)
		if err != nil {
			r.log.WithError(err).Error("encode snapshot")
			return
		}
		c.send(data)
	}
}

func (r *Room) broadcastLocked(data []byte) {
	for _, c := range r.conns {
		c.send(data)
	}
}

func (r *Room) sendWelcomeLocked(c *Conn) {
	data, err := codec.EncodeWelcome(r.nextSeq(), c.ID, string(c.Player), c.Host)
	if err != nil {
		r.log.WithError(err).Error("encode welcome")
		return
	}
	c.send(data)
}

func (r *Room) noticeLocked(c *Conn, kind, message string) {
	data, err := codec.EncodeNotice(r.nextSeq(), kind, message)
	if err != nil {
		r.log.WithError(err).Error("encode notice")
		return
	}
	c.send(data)
}

// noticePlayerLocked reaches every connection of one player.
func (r *Room) noticePlayerLocked(id redhand.PlayerID, kind, message string) {
	for _, c := range r.conns {
		if c.Player == id {
			r.noticeLocked(c, kind, message)
		}
	}
}

func (r *Room) settlementNoticesLocked(res *redhand.SettlementResult) {
	m := r.messages
	for _, mug := range res.Muggings {
		if mug.Failed {
			r.noticePlayerLocked(mug.Mugger, codec.NoticeMugFailed, m.MuggingFailed)
			continue
		}
		r.noticePlayerLocked(mug.Victim, codec.NoticeMugged, config.Format(m.Mugged, mug.Amount))
	}

	comeback := r.game.Config().Comeback
	for _, p := range res.Players {
		switch {
		case p.Eliminated && comeback != nil && comeback.Enabled():
			r.noticePlayerLocked(p.ID, codec.NoticeComeback, m.ComebackBankrupt)
		case p.EliminationBonus > 0:
			r.noticePlayerLocked(p.ID, codec.NoticeBonus, config.Format(m.EliminationBonus, p.EliminationBonus))
		case len(res.Eliminated) > 0 && p.Folded && res.BonusShare > 0:
			r.noticePlayerLocked(p.ID, codec.NoticeBonus, config.Format(m.EliminationMissed, res.BonusShare))
		}
	}

	for _, cb := range res.Comebacks {
		switch {
		case cb.Reinstated:
			r.noticePlayerLocked(cb.ID, codec.NoticeComeback, config.Format(m.ComebackSuccess, cb.Gold))
		case cb.AllFolded:
			r.noticePlayerLocked(cb.ID, codec.NoticeComeback, m.ComebackAllFolded)
		default:
			r.noticePlayerLocked(cb.ID, codec.NoticeComeback, m.ComebackFailed)
		}
	}
}

func (r *Room) punishmentNoticesLocked(res *redhand.PunishmentResult) {
	m := r.messages
	told := make(map[redhand.PlayerID]bool)
	caught := false
	for _, a := range res.Accused {
		told[a.ID] = true
		if a.Cheated {
			caught = true
			r.noticePlayerLocked(a.ID, codec.NoticePunished, m.CaughtCheating)
		} else {
			r.noticePlayerLocked(a.ID, codec.NoticePunished, m.WronglyAccused)
		}
	}
	for _, id := range res.Recipients {
		told[id] = true
		r.noticePlayerLocked(id, codec.NoticePunished, m.RedistributedGold)
	}
	if !caught {
		return
	}
	for _, p := range r.game.Snapshot().Players {
		if !told[p.ID] {
			r.noticePlayerLocked(p.ID, codec.NoticePunished, m.FoldedNoGold)
		}
	}
}
