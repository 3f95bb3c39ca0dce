package card

import (
	"math/rand"
	"strings"
)

type CardList []Card

func (ds *CardList) Init(cards []Card) {
	*ds = make([]Card, len(cards))
	copy(*ds, cards)
}

// Count 获取总牌数
func (ds CardList) Count() int {
	return len(ds)
}

func (ds CardList) Clone() CardList {
	if ds == nil {
		return nil
	}
	out := make(CardList, len(ds))
	copy(out, ds)
	return out
}

// Contains reports whether an identical card (same rank and suit) is present.
func (ds CardList) Contains(c Card) bool {
	return ds.CountOf(c) > 0
}

func (ds CardList) CountOf(c Card) int {
	n := 0
	for _, cc := range ds {
		if cc == c {
			n++
		}
	}
	return n
}

// HasDuplicates reports whether any card appears more than once.
func (ds CardList) HasDuplicates() bool {
	seen := make(map[Card]struct{}, len(ds))
	for _, c := range ds {
		if _, ok := seen[c]; ok {
			return true
		}
		seen[c] = struct{}{}
	}
	return false
}

func (ds CardList) Bytes() []byte {
	out := make([]byte, 0, len(ds))
	for _, c := range ds {
		out = append(out, byte(c))
	}
	return out
}

func (ds CardList) String() string {
	parts := make([]string, 0, len(ds))
	for _, c := range ds {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}

// Shuffle is an in-place Fisher–Yates shuffle. A nil rng uses the package source.
func (ds CardList) Shuffle(rng *rand.Rand) {
	swap := func(i, j int) { ds[i], ds[j] = ds[j], ds[i] }
	if rng == nil {
		rand.Shuffle(len(ds), swap)
		return
	}
	rng.Shuffle(len(ds), swap)
}

func (ds *CardList) Add(cards ...Card) {
	*ds = append(*ds, cards...)
}

func (ds *CardList) PopCard() Card {
	totalCount := ds.Count()
	if totalCount == 0 {
		return CardInvalid
	}
	card := (*ds)[totalCount-1]
	*ds = (*ds)[:totalCount-1]
	return card
}

// PopCards removes size cards from the front.
func (ds *CardList) PopCards(size int) ([]Card, bool) {
	if size < 0 || size > ds.Count() {
		return nil, false
	}
	cards := make([]Card, size)
	copy(cards, (*ds)[:size])
	*ds = (*ds)[size:]
	return cards, true
}

// RemoveAt deletes the card at index i, keeping order.
func (ds *CardList) RemoveAt(i int) Card {
	c := (*ds)[i]
	*ds = append((*ds)[:i], (*ds)[i+1:]...)
	return c
}
