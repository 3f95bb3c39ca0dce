//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"redhanded/replay"
)

type runRequest struct {
	Script replay.Script `json:"script"`
	// Hero overrides script.hero so the same script can be viewed per seat.
	Hero string `json:"hero,omitempty"`
}

type runResponse struct {
	OK    bool                   `json:"ok"`
	Tape  *replay.WireReplayTape `json:"tape,omitempty"`
	Error *replay.ReplayError    `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__redhandReplay", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(runResponse{
				OK:    false,
				Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		raw := args[0].String()
		resp := handleRun(raw)
		return mustJSON(resp)
	}))

	select {}
}

func handleRun(raw string) runResponse {
	var req runRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return runResponse{
			OK:    false,
			Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_json", Message: err.Error()},
		}
	}

	if req.Hero != "" {
		req.Script.Hero = req.Hero
	}
	tape, err := replay.Run(req.Script)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			return runResponse{OK: false, Error: replayErr}
		}
		return runResponse{
			OK:    false,
			Error: &replay.ReplayError{StepIndex: -1, Reason: "replay_generation_failed", Message: err.Error()},
		}
	}
	return runResponse{
		OK:   true,
		Tape: replay.ToWireReplayTape(tape),
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		fallback := runResponse{
			OK:    false,
			Error: &replay.ReplayError{StepIndex: -1, Reason: "marshal_failed", Message: err.Error()},
		}
		b2, _ := json.Marshal(fallback)
		return string(b2)
	}
	return string(b)
}
