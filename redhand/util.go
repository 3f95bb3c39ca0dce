package redhand

import (
	"fmt"
	"math/rand"
)

var (
	nameAdjectives = []string{
		"Lucky", "Royal", "Wild", "Ace", "Diamond", "Golden", "Sharp",
		"Swift", "Clever", "Bold", "Brave", "Mighty", "Sneaky", "Quick",
	}
	nameNouns = []string{
		"King", "Queen", "Jack", "Joker", "Dealer", "Player", "Gambler",
		"Shark", "Fox", "Wolf", "Tiger", "Eagle", "Dragon", "Falcon",
	}
)

// RandomName generates a card-themed display name such as "SneakyFox42".
func RandomName(rng *rand.Rand) string {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	adj := nameAdjectives[rng.Intn(len(nameAdjectives))]
	noun := nameNouns[rng.Intn(len(nameNouns))]
	return fmt.Sprintf("%s%s%d", adj, noun, rng.Intn(99)+1)
}
