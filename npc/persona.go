package npc

// PersonalityProfile defines the tunable parameters for a RuleBrain.
type PersonalityProfile struct {
	Aggression float64 `json:"aggression"` // 0.0–1.0: bet size and willingness to stay in
	CheatRate  float64 `json:"cheatRate"`  // 0.0–1.0: chance to cheat a weak hand
	Suspicion  float64 `json:"suspicion"`  // 0.0–1.0: readiness to denounce strong winners
	Caution    float64 `json:"caution"`    // 0.0–1.0: tendency to fold weak hands
	Randomness float64 `json:"randomness"` // 0.0–1.0: decision noise
}

// NPCPersona defines a named bot character.
type NPCPersona struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Tagline string             `json:"tagline"`
	Brain   PersonalityProfile `json:"brain"`
}

// DefaultPersonas is the built-in cast used when no personas file is configured.
func DefaultPersonas() []*NPCPersona {
	return []*NPCPersona{
		{
			ID: "honest_abe", Name: "Honest Abe", Tagline: "Never touched a marked card.",
			Brain: PersonalityProfile{Aggression: 0.35, CheatRate: 0.0, Suspicion: 0.7, Caution: 0.5, Randomness: 0.2},
		},
		{
			ID: "slick_vera", Name: "Slick Vera", Tagline: "Sleeves full of aces.",
			Brain: PersonalityProfile{Aggression: 0.7, CheatRate: 0.6, Suspicion: 0.2, Caution: 0.2, Randomness: 0.3},
		},
		{
			ID: "nervous_ned", Name: "Nervous Ned", Tagline: "Folds at the first sign of trouble.",
			Brain: PersonalityProfile{Aggression: 0.15, CheatRate: 0.1, Suspicion: 0.4, Caution: 0.85, Randomness: 0.2},
		},
		{
			ID: "big_lou", Name: "Big Lou", Tagline: "Takes what he wants.",
			Brain: PersonalityProfile{Aggression: 0.9, CheatRate: 0.35, Suspicion: 0.5, Caution: 0.1, Randomness: 0.4},
		},
		{
			ID: "judge_mae", Name: "Judge Mae", Tagline: "Sees everything.",
			Brain: PersonalityProfile{Aggression: 0.4, CheatRate: 0.05, Suspicion: 0.95, Caution: 0.4, Randomness: 0.1},
		},
	}
}
