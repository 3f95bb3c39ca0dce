package config

import (
	"strconv"
	"strings"
)

// Messages are the user-facing notice texts. {amount} is substituted by Format.
type Messages struct {
	BotchedCheating   string `json:"botchedCheatingMessage"`
	RefreshDetected   string `json:"refreshCheatingDetectedMessage"`
	MuggingFailed     string `json:"muggingFailedMessage"`
	MugRejected       string `json:"mugNoEligiblePlayers"`
	Mugged            string `json:"muggedMessage"`
	WronglyAccused    string `json:"wronglyAccusedMessage"`
	CaughtCheating    string `json:"caughtCheatingMessage"`
	RedistributedGold string `json:"redistributedGoldMessage"`
	FoldedNoGold      string `json:"foldedNoGoldMessage"`
	EliminationBonus  string `json:"eliminationBonusMessage"`
	EliminationMissed string `json:"eliminationMissedMessage"`
	ComebackBankrupt  string `json:"comebackBankruptMessage"`
	ComebackSuccess   string `json:"comebackSuccessMessage"`
	ComebackFailed    string `json:"comebackFailedMessage"`
	ComebackAllFolded string `json:"comebackAllPlayersFoldedMessage"`
	PunishmentUsed    string `json:"punishmentUsedMessage"`
	NeedMinPlayers    string `json:"needMinPlayersMessage"`
	RoundInProgress   string `json:"roundInProgressMessage"`
	GameEnded         string `json:"gameEndedMessage"`
	NotHost           string `json:"notHostMessage"`
	Rejected          string `json:"rejectedMessage"`
}

func DefaultMessages() Messages {
	return Messages{
		BotchedCheating:   "You've been caught red-handed! Your greedy card-swapping has backfired: you now have duplicate cards. Your bet has been placed automatically.",
		RefreshDetected:   "Multiple refreshes detected! A duplicate card was forced into your hand and your bet was placed automatically.",
		MuggingFailed:     "The player you tried to mug has almost nothing left. You felt some pity and decided not to proceed with the theft.",
		MugRejected:       "No eligible players to mug (they need at least {amount} gold)",
		Mugged:            "A mysterious player stole {amount} gold from you during the betting phase!",
		WronglyAccused:    "You were wrongly accused! Your gold has been doubled.",
		CaughtCheating:    "You were caught red-handed! Half your gold has been confiscated and redistributed to the honest players who stayed in the game.",
		RedistributedGold: "You received part of the gold redistributed from caught cheaters!",
		FoldedNoGold:      "Cheater(s) were caught and punished. You received nothing because you folded or did not bet.",
		EliminationBonus:  "A rival went broke! You earned {amount} coins as a survivor's reward for staying in the game!",
		EliminationMissed: "A player went broke, but you folded early and missed out on the {amount} coin survivor's bonus.",
		ComebackBankrupt:  "You're out of gold and entered Comeback Mode. Predict this round's winner to get back in the game!",
		ComebackSuccess:   "You predicted correctly! You're back in the game with {amount} gold.",
		ComebackFailed:    "You incorrectly predicted the winner. Better luck next round!",
		ComebackAllFolded: "No players placed bets this round. You don't come back into play.",
		PunishmentUsed:    "Punishment already used this round",
		NeedMinPlayers:    "Need at least 2 players to start",
		RoundInProgress:   "Please wait for the current round to end before joining the game.",
		GameEnded:         "The game has ended!",
		NotHost:           "Only the host can do that.",
		Rejected:          "That action is not allowed right now.",
	}
}

// Format substitutes {amount} in msg.
func Format(msg string, amount int64) string {
	return strings.ReplaceAll(msg, "{amount}", strconv.FormatInt(amount, 10))
}
