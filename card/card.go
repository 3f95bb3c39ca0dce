package card

import (
	"fmt"
	"strings"
)

// Card 牌枚举
//
// 编码规则:
// - 高4位: 花色 (0:Heart, 1:Diamond, 2:Club, 3:Spade)
// - 低4位: 点数 (1:A, 2..10, 11:J, 12:Q, 13:K)
type Card byte

// Rank is the face rank of a card, 1 (ace) through 13 (king).
type Rank byte

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

func (r Rank) Valid() bool { return r >= Ace && r <= King }

// Value maps the rank to its comparison value: 2..13, ace high as 14.
func (r Rank) Value() int {
	if r == Ace {
		return 14
	}
	return int(r)
}

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if r.Valid() {
		return fmt.Sprintf("%d", byte(r))
	}
	return "?"
}

// New builds a card from suit and rank. Invalid input yields CardInvalid.
func New(s Suit, r Rank) Card {
	if !s.Valid() || !r.Valid() {
		return CardInvalid
	}
	return Card(byte(s)<<4 | byte(r))
}

func (c Card) Valid() bool {
	return c.Suit().Valid() && c.Rank().Valid()
}

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	return c.Rank().String() + c.Suit().Letter()
}

// Rank 获取牌面值 1-13 (A=1, K=13)
func (c Card) Rank() Rank {
	return Rank(c & 0x0F)
}

func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

// Value 返回用于比较大小的点数, A 视为 14
func (c Card) Value() int {
	return c.Rank().Value()
}

// WithRank returns the card with its rank replaced, suit kept.
func (c Card) WithRank(r Rank) Card { return New(c.Suit(), r) }

// WithSuit returns the card with its suit replaced, rank kept.
func (c Card) WithSuit(s Suit) Card { return New(s, c.Rank()) }

// Parse converts strings such as "Ah", "10d", "Ts" or "QS" into a Card.
func Parse(str string) (Card, error) {
	if len(str) < 2 {
		return CardInvalid, fmt.Errorf("invalid card string: %q", str)
	}
	suit, err := ParseSuit(str[len(str)-1:])
	if err != nil {
		return CardInvalid, err
	}
	rank, err := ParseRank(str[:len(str)-1])
	if err != nil {
		return CardInvalid, err
	}
	return New(suit, rank), nil
}

// MustParse is Parse for fixtures; it panics on bad input.
func MustParse(str string) Card {
	c, err := Parse(str)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseList parses a space separated list, e.g. "Ah Kh Qh Jh 10h".
func ParseList(str string) (CardList, error) {
	fields := strings.Fields(str)
	out := make(CardList, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func ParseRank(str string) (Rank, error) {
	switch strings.ToUpper(str) {
	case "A", "1":
		return Ace, nil
	case "2", "3", "4", "5", "6", "7", "8", "9":
		return Rank(str[0] - '0'), nil
	case "T", "10":
		return Rank(10), nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	}
	return 0, fmt.Errorf("invalid rank: %q", str)
}
