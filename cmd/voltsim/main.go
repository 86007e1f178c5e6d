// Command voltsim runs headless VoltRace matches with random-legal bots
// and prints a summary per seed. It is a balance and soak tool: a long
// run that never wedges the turn loop is the property being exercised.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/engine"
)

const maxSteps = 5000

func main() {
	cmd := &cli.Command{
		Name:      "voltsim",
		Usage:     "simulate headless VoltRace matches with random bots",
		ArgsUsage: "[seed ...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "seed",
				Usage: "first seed when no explicit seeds are given",
				Value: 1,
			},
			&cli.IntFlag{
				Name:    "matches",
				Aliases: []string{"n"},
				Usage:   "number of consecutive seeds to simulate",
				Value:   6,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	var seeds []int64
	if args := cmd.Args().Slice(); len(args) > 0 {
		for _, arg := range args {
			s, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("bad seed %q: %w", arg, err)
			}
			seeds = append(seeds, s)
		}
	} else {
		first := cmd.Int("seed")
		for i := 0; i < cmd.Int("matches"); i++ {
			seeds = append(seeds, int64(first+i))
		}
	}

	for _, seed := range seeds {
		fmt.Printf("\n=== Simulating seed %d ===\n", seed)
		simulate(seed)
	}
	return nil
}

func simulate(seed int64) {
	kits := catalog.Kits()
	rng := rand.New(rand.NewSource(seed))

	count := 2 + rng.Intn(4)
	seats := make([]engine.Seat, count)
	for i := range seats {
		seats[i] = engine.Seat{
			Name:  fmt.Sprintf("bot%d", i+1),
			KitID: kits[rng.Intn(len(kits))].ID,
		}
	}

	m, err := engine.NewMatch(seats, catalog.DefaultEnergyPacks(), seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "match setup failed: %v\n", err)
		return
	}

	steps := 0
	for ; steps < maxSteps && !m.Ended; steps++ {
		if name, ok := m.ResolvePending(); ok {
			if _, err := m.Resolve(name); err != nil {
				m.ForceResolve(name)
			}
			continue
		}

		cur := m.Current()

		// Window-shop occasionally; keep whatever comes out of the pack.
		if rng.Intn(100) < 15 {
			tiers := []catalog.PerkPackTier{catalog.PackBasic, catalog.PackIntermediate, catalog.PackAdvanced}
			if _, err := m.BuyPerkPack(cur.Name, tiers[rng.Intn(len(tiers))]); err == nil {
				if cur.Offer != nil && len(cur.Offer.Options) > 0 {
					pick := cur.Offer.Options[rng.Intn(len(cur.Offer.Options))]
					if _, err := m.SelectPerk(cur.Name, pick, cur.Offer.Cost); err != nil {
						m.CancelOffer(cur.Name)
					}
				}
			}
		}

		if rng.Intn(100) < 35 {
			target := randomOther(rng, m, cur.Name)
			slot := 1 + rng.Intn(4)
			// Illegal picks are expected; bots just shrug.
			m.UseAbility(cur.Name, slot, target)
			if m.Ended {
				break
			}
			if name, ok := m.ResolvePending(); ok {
				m.Resolve(name)
				continue
			}
		}

		if _, err := m.Roll(cur.Name); err != nil {
			// A stuck bot would spin forever; eject it instead.
			m.ForceResolve(cur.Name)
		}
	}

	if !m.Ended {
		fmt.Printf("no finish after %d steps (round %d)\n", steps, m.Round)
		return
	}

	fmt.Printf("winner: %s after %d steps, %d rounds\n", m.Winner, steps, m.Round)
	for _, sc := range m.FinalScores() {
		marker := " "
		if sc.Name == m.Winner {
			marker = "*"
		}
		fmt.Printf(" %s %-6s score=%-4d pos=%-2d energy=%-4d pm=%-2d collisions=%d perks=%d\n",
			marker, sc.Name, sc.Score, sc.Position, sc.Energy, sc.PM, sc.Collisions, sc.Perks)
	}
}

// randomOther picks a random active opponent name, or empty when alone.
func randomOther(rng *rand.Rand, m *engine.Match, self string) string {
	var others []string
	for _, p := range m.ActivePlayers() {
		if p.Name != self && !p.Finished {
			others = append(others, p.Name)
		}
	}
	if len(others) == 0 {
		return ""
	}
	return others[rng.Intn(len(others))]
}
