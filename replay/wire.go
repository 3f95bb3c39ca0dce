package replay

type WireReplayTape struct {
	TapeVersion int               `json:"tapeVersion"`
	Seed        int64             `json:"seed"`
	Hero        string            `json:"hero,omitempty"`
	Events      []WireReplayEvent `json:"events"`
}

type WireReplayEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	StepIndex   int32  `json:"stepIndex"`
	EnvelopeB64 string `json:"envelopeB64"`
}

func ToWireReplayTape(tape *Tape) *WireReplayTape {
	if tape == nil {
		return nil
	}
	out := &WireReplayTape{
		TapeVersion: tape.TapeVersion,
		Seed:        tape.Seed,
		Hero:        tape.Hero,
		Events:      make([]WireReplayEvent, 0, len(tape.Events)),
	}
	for _, e := range tape.Events {
		out.Events = append(out.Events, WireReplayEvent{
			Type:        e.Type,
			Seq:         e.Seq,
			StepIndex:   e.StepIndex,
			EnvelopeB64: e.EnvelopeB64,
		})
	}
	return out
}
