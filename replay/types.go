package replay

import "google.golang.org/protobuf/types/known/structpb"

// Script is a deterministic session: a seed, the players seated in join
// order, and the operations applied one after another.
type Script struct {
	Seed    int64        `json:"seed"`
	Table   *TableSpec   `json:"table,omitempty"`
	Players []PlayerSpec `json:"players"`
	// Hero, when set, sees the table as that player would. Empty shows every hand.
	Hero  string `json:"hero,omitempty"`
	Steps []Step `json:"steps"`
}

// TableSpec overrides the default game constants. Zero fields keep defaults.
type TableSpec struct {
	StartingGold     int64  `json:"starting_gold,omitempty"`
	MinimalBet       int64  `json:"minimal_bet,omitempty"`
	EliminationBonus int64  `json:"elimination_bonus,omitempty"`
	MinPlayers       int    `json:"min_players,omitempty"`
	ComebackGold     *int64 `json:"comeback_gold,omitempty"` // negative disables comeback
}

type PlayerSpec struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Step is one engine operation. Only the fields its Op uses are read.
type Step struct {
	Op       string   `json:"op"`
	Player   string   `json:"player,omitempty"`
	Name     string   `json:"name,omitempty"`
	Indices  []int    `json:"indices,omitempty"`
	Amount   int64    `json:"amount,omitempty"`
	Index    int      `json:"index,omitempty"`
	Rank     string   `json:"rank,omitempty"`
	Suit     string   `json:"suit,omitempty"`
	Target   string   `json:"target,omitempty"`
	Players  []string `json:"players,omitempty"`
	Optional bool     `json:"optional,omitempty"` // a rejected player action is recorded, not fatal
}

type Tape struct {
	TapeVersion int     `json:"tape_version"`
	Seed        int64   `json:"seed"`
	Hero        string  `json:"hero,omitempty"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type        string           `json:"type"`
	Seq         uint64           `json:"seq"`
	StepIndex   int32            `json:"step_index"`
	Value       *structpb.Struct `json:"-"`
	EnvelopeB64 string           `json:"envelope_b64,omitempty"`
}
