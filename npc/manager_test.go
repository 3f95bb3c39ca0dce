package npc

import (
	"testing"
	"time"

	"redhanded/redhand"
)

func newBotGame(t *testing.T) *redhand.Game {
	t.Helper()
	cfg := redhand.DefaultConfig()
	cfg.Seed = 11
	cfg.BettingPhaseDuration = time.Minute
	g, err := redhand.NewGame(cfg)
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	return g
}

func TestManager_SpawnAndPlayRounds(t *testing.T) {
	g := newBotGame(t)
	m := NewManager(NewDefaultRegistry(), 9, nil)
	for _, id := range []string{"honest_abe", "slick_vera", "big_lou", ""} {
		if _, err := m.SpawnNPC(g, id); err != nil {
			t.Fatalf("SpawnNPC(%q) err: %v", id, err)
		}
	}
	if len(m.IDs()) != 4 || len(g.Snapshot().Players) != 4 {
		t.Fatalf("expected 4 bots seated")
	}
	if err := g.StartGame(); err != nil {
		t.Fatalf("StartGame err: %v", err)
	}

	for round := 0; round < 5; round++ {
		m.PlayAll(g)
		res, ok := g.EndBettingPhase()
		if !ok {
			t.Fatalf("round %d: expected settlement", round+1)
		}
		m.PlayAll(g)
		for _, p := range g.Snapshot().Players {
			if p.Gold < 0 {
				t.Fatalf("round %d: negative gold for %s", res.Round, p.ID)
			}
		}
		if err := g.StartNewRound(); err != nil {
			t.Fatalf("StartNewRound err: %v", err)
		}
	}
}

func TestManager_UnknownPersona(t *testing.T) {
	g := newBotGame(t)
	m := NewManager(NewDefaultRegistry(), 1, nil)
	if _, err := m.SpawnNPC(g, "nobody"); err == nil {
		t.Fatalf("expected unknown persona rejected")
	}
}

func TestManager_Despawn(t *testing.T) {
	g := newBotGame(t)
	m := NewManager(nil, 1, nil)
	inst, err := m.SpawnNPC(g, "judge_mae")
	if err != nil {
		t.Fatalf("SpawnNPC err: %v", err)
	}
	if !m.IsNPC(inst.PlayerID) {
		t.Fatalf("expected bot registered")
	}
	m.DespawnNPC(inst.PlayerID)
	if m.IsNPC(inst.PlayerID) || len(m.IDs()) != 0 {
		t.Fatalf("expected bot removed")
	}
	if d := m.Play(g, inst.PlayerID); d != nil {
		t.Fatalf("expected no play for a despawned bot")
	}
}

func TestRegistry_LoadFromJSON(t *testing.T) {
	r := NewRegistry()
	err := r.LoadFromJSON([]byte(`[{"id":"x","name":"X","brain":{"aggression":0.3}},{"name":"no id"}]`))
	if err != nil {
		t.Fatalf("LoadFromJSON err: %v", err)
	}
	if r.Count() != 1 || r.Get("x").Brain.Aggression != 0.3 {
		t.Fatalf("expected one persona loaded, got %d", r.Count())
	}
	if err := r.LoadFromJSON([]byte(`{`)); err == nil {
		t.Fatalf("expected parse error")
	}
}
