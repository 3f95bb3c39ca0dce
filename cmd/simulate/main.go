// Command simulate seats a table of bots and plays rounds offline, printing
// each settlement. It is a tuning aid for personas and the game economy.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"

	"redhanded/card"
	"redhanded/npc"
	"redhanded/redhand"
)

func main() {
	players := flag.Int("players", 6, "number of bots at the table")
	rounds := flag.Int("rounds", 10, "maximum rounds to play")
	seed := flag.Int64("seed", 7, "random seed for the deck and the bots")
	personas := flag.String("personas", "", "optional persona JSON file")
	comeback := flag.Bool("comeback", true, "let eliminated bots try a comeback")
	verbose := flag.Bool("v", false, "log engine and bot events")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(*players, *rounds, *seed, *personas, *comeback, log); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(players, rounds int, seed int64, personas string, comeback bool, log *logrus.Logger) error {
	cfg := redhand.DefaultConfig()
	cfg.Seed = seed
	cfg.BettingPhaseDuration = 0
	cfg.Logger = log
	if !comeback {
		cfg.Comeback = nil
	}
	game, err := redhand.NewGame(cfg)
	if err != nil {
		return err
	}

	registry := npc.NewDefaultRegistry()
	if personas != "" {
		if err := registry.LoadFromFile(personas); err != nil {
			return err
		}
	}
	bots := npc.NewManager(registry, seed, log)
	for i := 0; i < players; i++ {
		if _, err := bots.SpawnNPC(game, ""); err != nil {
			return err
		}
	}
	if err := game.StartGame(); err != nil {
		return err
	}

	pterm.DefaultHeader.WithFullWidth().Println("Red Handed: bot table")
	pterm.Info.Printfln("%d bots, %d personas, seed %d", players, registry.Count(), seed)

	for i := 0; i < rounds; i++ {
		bots.PlayAll(game)
		res, ok := game.EndBettingPhase()
		if !ok {
			return fmt.Errorf("round %d: settlement refused in %s", i+1, game.Phase())
		}
		printSettlement(res)

		bots.PlayAll(game)
		if pr, ok := moderate(game); ok {
			printPunishment(pr)
		}

		if err := game.StartNewRound(); err != nil {
			return err
		}
		if dealt := countDealt(game.Snapshot()); dealt < cfg.MinPlayers {
			pterm.Warning.Printfln("only %d bot(s) left with cards, stopping", dealt)
			break
		}
	}
	if err := game.EndGame(); err != nil {
		return err
	}
	printStandings(game.Snapshot())
	return nil
}

// moderate plays the host: anyone denounced by at least two players is
// punished.
func moderate(game *redhand.Game) (*redhand.PunishmentResult, bool) {
	var accused []redhand.PlayerID
	for _, s := range game.Snapshot().SuspectedCheaters {
		if len(s.Accusers) >= 2 {
			accused = append(accused, s.Suspect)
		}
	}
	if len(accused) == 0 {
		return nil, false
	}
	return game.PunishCheaters(accused)
}

func countDealt(s redhand.Snapshot) int {
	n := 0
	for _, p := range s.Players {
		if len(p.Hand) > 0 {
			n++
		}
	}
	return n
}

func printSettlement(res *redhand.SettlementResult) {
	pterm.DefaultSection.Printfln("Round %d: pot %d", res.Round, res.Pot)

	data := pterm.TableData{{"Player", "Hand", "Ranking", "Wagered", "Won", "Gold", "Notes"}}
	for _, p := range res.Players {
		name := p.Name
		if p.IsWinner {
			name = pterm.LightGreen(name)
		}
		var notes []string
		if p.Folded {
			notes = append(notes, "folded")
		}
		if p.Eliminated {
			notes = append(notes, pterm.LightRed("eliminated"))
		}
		if p.EliminationBonus > 0 {
			notes = append(notes, "bonus "+strconv.FormatInt(p.EliminationBonus, 10))
		}
		data = append(data, []string{
			name,
			handString(p.Hand),
			describeHand(p.Hand, p.HandName),
			strconv.FormatInt(p.Wagered, 10),
			strconv.FormatInt(p.Won, 10),
			strconv.FormatInt(p.GoldAfter, 10),
			strings.Join(notes, ", "),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}

	for _, m := range res.Muggings {
		if m.Failed {
			pterm.Warning.Printfln("%s failed to mug %s", m.Mugger, m.Victim)
			continue
		}
		pterm.Info.Printfln("%s mugged %s for %d", m.Mugger, m.Victim, m.Amount)
	}
	if res.Forfeited > 0 {
		pterm.Info.Printfln("nobody contested, %d forfeited", res.Forfeited)
	}
}

func printPunishment(pr *redhand.PunishmentResult) {
	for _, a := range pr.Accused {
		if a.Cheated {
			pterm.Success.Printfln("%s caught cheating, gold %d -> %d", a.ID, a.GoldBefore, a.GoldAfter)
		} else {
			pterm.Warning.Printfln("%s wrongly accused, gold %d -> %d", a.ID, a.GoldBefore, a.GoldAfter)
		}
	}
	if pr.Confiscated > 0 {
		pterm.Info.Printfln("%d confiscated, %d each to %d player(s)", pr.Confiscated, pr.Share, len(pr.Recipients))
	}
}

func printStandings(s redhand.Snapshot) {
	players := append([]redhand.PlayerSnapshot(nil), s.Players...)
	sort.SliceStable(players, func(i, j int) bool { return players[i].Gold > players[j].Gold })

	data := pterm.TableData{{"#", "Player", "Gold", "Status"}}
	for i, p := range players {
		status := "playing"
		if p.InComebackMode {
			status = "comeback"
		}
		data = append(data, []string{strconv.Itoa(i + 1), p.Name, strconv.FormatInt(p.Gold, 10), status})
	}
	pterm.DefaultSection.Printfln("Final standings after %d round(s)", s.Round)
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}

func handString(hand []card.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
