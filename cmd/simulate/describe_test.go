package main

import (
	"testing"

	"github.com/paulhankin/poker"

	"redhanded/card"
)

func TestToPoker_DistinctForFullDeck(t *testing.T) {
	seen := map[poker.Card]card.Card{}
	for _, c := range card.NewDeck() {
		pc, err := toPoker(c)
		if err != nil {
			t.Fatalf("toPoker(%s): %v", c, err)
		}
		if prev, ok := seen[pc]; ok {
			t.Fatalf("%s and %s map to the same card", prev, c)
		}
		seen[pc] = c
	}
}

func TestDescribeHand(t *testing.T) {
	royal, err := card.ParseList("Ah Kh Qh Jh 10h")
	if err != nil {
		t.Fatalf("ParseList: %v", err)
	}
	if got := describeHand(royal, "fallback"); got == "" || got == "fallback" {
		t.Fatalf("expected a reference description, got %q", got)
	}

	dup, err := card.ParseList("Ah Ah Qh Jh 10h")
	if err != nil {
		t.Fatalf("ParseList: %v", err)
	}
	if got := describeHand(dup, "Flush"); got != "Flush" {
		t.Fatalf("expected fallback for a duplicate hand, got %q", got)
	}
	if got := describeHand(royal[:3], "short"); got != "short" {
		t.Fatalf("expected fallback for a short hand, got %q", got)
	}
}
