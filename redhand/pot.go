package redhand

// pot 底池. Antes land here when cards are dealt, bets when betting closes.
type pot struct {
	amount int64
}

func (pt *pot) reset() {
	pt.amount = 0
}

// collectAnte takes the ante from every dealt player, clamped to their gold.
func (pt *pot) collectAnte(players []*Player, ante int64) {
	if ante <= 0 {
		return
	}
	for _, p := range players {
		pt.amount += p.payAnte(ante)
	}
}

// sweep moves every outstanding bet into the pot and returns the amount moved.
func (pt *pot) sweep(players []*Player) int64 {
	total := int64(0)
	for _, p := range players {
		if p.bet <= 0 {
			continue
		}
		p.gold -= p.bet
		p.stake += p.bet
		total += p.bet
		p.bet = 0
	}
	pt.amount += total
	return total
}

// take empties the pot.
func (pt *pot) take() int64 {
	amount := pt.amount
	pt.amount = 0
	return amount
}

// splitEvenly floor-divides total among n recipients.
func splitEvenly(total int64, n int) (share, remainder int64) {
	if n <= 0 || total <= 0 {
		return 0, total
	}
	share = total / int64(n)
	return share, total - share*int64(n)
}
