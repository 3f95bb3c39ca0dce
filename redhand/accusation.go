package redhand

import "github.com/sirupsen/logrus"

type PunishmentOutcome struct {
	ID         PlayerID
	Cheated    bool
	GoldBefore int64
	GoldAfter  int64
}

type PunishmentResult struct {
	Round        int
	Accused      []PunishmentOutcome
	Confiscated  int64
	Recipients   []PlayerID
	Share        int64
	RoundingLoss int64
}

func (g *Game) accusationsOpenLocked() bool {
	return g.phase == PhaseBetting || g.phase == PhaseResults
}

// DenounceCheaters adds accuser to each suspect's accuser list. It has no
// economic effect. Unknown ids and self-accusations are skipped.
func (g *Game) DenounceCheaters(accuser PlayerID, suspects []PlayerID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.accusationsOpenLocked() {
		return false
	}
	if _, ok := g.players[accuser]; !ok {
		return false
	}
	changed := false
	for _, s := range suspects {
		if s == accuser {
			continue
		}
		if _, ok := g.players[s]; !ok {
			continue
		}
		accusers, known := g.suspicions[s]
		if containsID(accusers, accuser) {
			continue
		}
		if !known {
			g.suspectOrder = append(g.suspectOrder, s)
		}
		g.suspicions[s] = append(accusers, accuser)
		changed = true
	}
	return changed
}

func (g *Game) ClearSuspicions() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.suspicions = make(map[PlayerID][]PlayerID)
	g.suspectOrder = nil
}

// PunishCheaters resolves one batch of accusations; only the first call in a
// round has any effect. Cheaters keep ceil(gold/2), innocents have their gold
// doubled, and the confiscated gold is floor-split among honest bettors.
func (g *Game) PunishCheaters(accused []PlayerID) (*PunishmentResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.accusationsOpenLocked() || g.punishmentUsed {
		return nil, false
	}
	g.punishmentUsed = true

	out := &PunishmentResult{Round: g.round}
	punished := make(map[PlayerID]bool, len(accused))
	seen := make(map[PlayerID]bool, len(accused))
	for _, id := range accused {
		p, ok := g.players[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		p.accused = true
		o := PunishmentOutcome{ID: id, Cheated: p.cheated, GoldBefore: p.gold}
		if p.cheated {
			kept := (p.gold + 1) / 2
			out.Confiscated += p.gold - kept
			p.gold = kept
			p.wronglyAccused = false
			punished[id] = true
		} else {
			p.gold *= 2
			p.wronglyAccused = true
		}
		o.GoldAfter = p.gold
		out.Accused = append(out.Accused, o)
	}

	if out.Confiscated > 0 {
		var eligible []*Player
		for _, p := range g.orderedLocked() {
			if p.folded || p.wagered() <= 0 || p.gold <= 0 || punished[p.id] {
				continue
			}
			eligible = append(eligible, p)
		}
		out.Share, out.RoundingLoss = splitEvenly(out.Confiscated, len(eligible))
		if out.Share > 0 {
			for _, p := range eligible {
				p.gold += out.Share
				p.receivedRedistributed = true
				out.Recipients = append(out.Recipients, p.id)
			}
		}
	}

	g.lastPunishment = out
	g.log.WithFields(logrus.Fields{
		"round":       out.Round,
		"accused":     len(out.Accused),
		"confiscated": out.Confiscated,
		"recipients":  len(out.Recipients),
	}).Info("cheaters punished")
	return clonePunishment(out), true
}

func clonePunishment(r *PunishmentResult) *PunishmentResult {
	c := *r
	c.Accused = append([]PunishmentOutcome(nil), r.Accused...)
	c.Recipients = append([]PlayerID(nil), r.Recipients...)
	return &c
}

func containsID(ids []PlayerID, id PlayerID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
