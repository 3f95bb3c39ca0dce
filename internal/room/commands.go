package room

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"redhanded/internal/codec"
	"redhanded/internal/config"
	"redhanded/internal/ledger"
	"redhanded/redhand"
)

func (r *Room) handleCommand(connID string, cmd codec.Command, now time.Time) error {
	c, ok := r.conns[connID]
	if !ok {
		return ErrUnknownConn
	}
	if cmd.Type.HostOnly() {
		if !c.Host {
			r.noticeLocked(c, codec.NoticeRejected, r.messages.NotHost)
			return ErrNotHost
		}
		return r.handleHostCommand(c, cmd, now)
	}
	if cmd.Type == codec.CmdTick {
		r.tickLocked(now, c.ID)
		return nil
	}
	if c.Player == "" {
		r.noticeLocked(c, codec.NoticeRejected, r.messages.Rejected)
		return ErrNoPlayer
	}

	r.log.WithFields(logrus.Fields{"player": c.Player, "cmd": cmd.Type}).Debug("player command")
	me := c.Player
	var accepted bool
	switch cmd.Type {
	case codec.CmdJoin:
		if _, err := r.game.Join(me, cmd.Name); err != nil {
			r.noticeLocked(c, codec.NoticeError, err.Error())
			return err
		}
		accepted = true
	case codec.CmdChangeCards:
		before, _ := r.game.Player(me)
		accepted = r.game.ChangeCards(me, cmd.Indices)
		if after, ok := r.game.Player(me); accepted && ok && after.BotchedCheating && !before.BotchedCheating {
			r.noticePlayerLocked(me, codec.NoticeBotched, r.messages.RefreshDetected)
		}
	case codec.CmdBet:
		accepted = r.game.PlaceBet(me, cmd.Amount)
	case codec.CmdFold:
		accepted = r.game.Fold(me)
	case codec.CmdCheat:
		var botched bool
		botched, accepted = r.game.CheatCard(me, cmd.Index, cmd.Rank, cmd.Suit)
		if accepted && botched {
			r.noticePlayerLocked(me, codec.NoticeBotched, r.messages.BotchedCheating)
		}
	case codec.CmdMug:
		if res := r.game.ExecuteMug(me, redhand.PlayerID(cmd.Target)); res.Failed {
			p, _ := r.game.Player(me)
			r.noticeLocked(c, codec.NoticeMugRejected, config.Format(r.messages.MugRejected, p.Bet))
			return ErrRejected
		}
		accepted = true
	case codec.CmdDenounce:
		accepted = r.game.DenounceCheaters(me, playerIDs(cmd.Players))
	case codec.CmdPredict:
		accepted = r.game.SetComebackPrediction(me, redhand.PlayerID(cmd.Target))
	default:
		return fmt.Errorf("%w: %s", codec.ErrUnknownCommand, cmd.Type)
	}

	if !accepted {
		r.noticeLocked(c, codec.NoticeRejected, r.messages.Rejected)
		return ErrRejected
	}
	r.dirty = true
	return nil
}

func (r *Room) handleHostCommand(c *Conn, cmd codec.Command, now time.Time) error {
	r.log.WithFields(logrus.Fields{"conn": c.ID, "cmd": cmd.Type}).Info("host command")

	var err error
	switch cmd.Type {
	case codec.CmdStartGame:
		err = r.game.StartGame()
	case codec.CmdEndBetting:
		if !r.endBettingLocked(now) {
			err = ErrRejected
		}
	case codec.CmdNewRound:
		err = r.game.StartNewRound()
	case codec.CmdEndGame:
		err = r.game.EndGame()
	case codec.CmdNewGame:
		err = r.game.StartNewGame()
	case codec.CmdResetPlayers:
		err = r.game.ResetPlayers()
		if err == nil {
			r.despawnBotsLocked()
		}
	case codec.CmdPunish:
		res, ok := r.game.PunishCheaters(playerIDs(cmd.Players))
		if !ok {
			r.noticeLocked(c, codec.NoticeRejected, r.messages.PunishmentUsed)
			return ErrRejected
		}
		r.announcePunishmentLocked(res, now)
	case codec.CmdClearSuspicions:
		r.game.ClearSuspicions()
	case codec.CmdAddBot:
		_, err = r.bots.SpawnNPC(r.game, cmd.Persona)
	default:
		return fmt.Errorf("%w: %s", codec.ErrUnknownCommand, cmd.Type)
	}

	if err != nil {
		r.noticeLocked(c, codec.NoticeError, r.hostErrorMessage(err))
		return err
	}
	r.dirty = true
	return nil
}

func (r *Room) hostErrorMessage(err error) string {
	switch {
	case errors.Is(err, redhand.ErrNotEnoughPlayers):
		return r.messages.NeedMinPlayers
	case errors.Is(err, ErrRejected):
		return r.messages.Rejected
	}
	return err.Error()
}

// endBettingLocked settles the round. It is a no-op outside betting.
func (r *Room) endBettingLocked(now time.Time) bool {
	res, ok := r.game.EndBettingPhase()
	if !ok {
		return false
	}
	snap := r.game.Snapshot()
	r.log.WithFields(logrus.Fields{"round": res.Round, "pot": res.Pot, "winners": res.Winners}).Info("round settled")

	if data, err := codec.EncodeSettlement(r.nextSeq(), res); err == nil {
		r.broadcastLocked(data)
	} else {
		r.log.WithError(err).Error("encode settlement")
	}
	r.settlementNoticesLocked(res)
	r.dispatchRoundHooksLocked(ledger.FromSettlement(r.ID, res, snap, now))
	r.dirty = true
	return true
}

func (r *Room) announcePunishmentLocked(res *redhand.PunishmentResult, now time.Time) {
	r.log.WithFields(logrus.Fields{"round": res.Round, "confiscated": res.Confiscated}).Info("cheaters punished")
	if data, err := codec.EncodePunishment(r.nextSeq(), res); err == nil {
		r.broadcastLocked(data)
	} else {
		r.log.WithError(err).Error("encode punishment")
	}
	r.punishmentNoticesLocked(res)
	r.dispatchRoundHooksLocked(ledger.FromPunishment(r.ID, res, now))
}

func (r *Room) despawnBotsLocked() {
	for _, id := range r.bots.IDs() {
		r.bots.DespawnNPC(id)
	}
}

func playerIDs(ids []string) []redhand.PlayerID {
	out := make([]redhand.PlayerID, 0, len(ids))
	for _, id := range ids {
		out = append(out, redhand.PlayerID(id))
	}
	return out
}
