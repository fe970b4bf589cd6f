package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vovakirdan/towerdefense/internal/game"
	"github.com/vovakirdan/towerdefense/internal/simulation"
	"github.com/vovakirdan/towerdefense/internal/storage"
)

var (
	flagMaxTicks      int
	flagTick          float64
	flagProgressEvery int
	flagSave          bool
	flagJSON          bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one match to completion",
	Long: `Run a headless match: the placement strategy buys buildings, rounds
start when their preparation timer runs out, and the combat model resolves
enemies until the match is won, lost, or the tick limit is reached.

The same scenario, strategy and seed always produce the same result.

Examples:
  towersim simulate
  towersim simulate --seed 42 --progress-every 100
  towersim simulate --strategy ./aggressive.yaml --difficulty hard --save
  towersim simulate --json`,
	Run: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", 0, "Tick limit (0 = one simulated hour)")
	simulateCmd.Flags().Float64Var(&flagTick, "tick", 0, "Simulated seconds per tick (0 = scenario tick rate)")
	simulateCmd.Flags().IntVar(&flagProgressEvery, "progress-every", 0, "Print progress every N ticks (0 = off)")
	simulateCmd.Flags().BoolVar(&flagSave, "save", false, "Store the result in the run history")
	simulateCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the result as JSON")
}

// simOptions applies the shared simulation flags.
func simOptions(o *simulation.Options) {
	if flagMaxTicks > 0 {
		o.MaxTicks = flagMaxTicks
	}
	if flagTick > 0 {
		o.TickDuration = flagTick
	}
}

func gameOptions(seed int64) game.Options {
	plan := loadPlan()
	return game.Options{Seed: &seed, Plan: &plan, Logger: logger, TickRate: settings.TickRate}
}

func runSimulate(_ *cobra.Command, _ []string) {
	ctx, cancel := signalContext()
	defer cancel()

	sc := loadScenario()
	seed := effectiveSeed(sc)
	p := message.NewPrinter(language.English)

	res, err := game.Simulate(ctx, sc, gameOptions(seed), func(o *simulation.Options) {
		simOptions(o)
		o.ProgressEvery = flagProgressEvery
		if flagProgressEvery > 0 && !flagJSON {
			o.OnProgress = func(pr simulation.Progress) {
				p.Printf("tick %6d  round %d wave %d  %-11s gold %6d  lives %3d  enemies %d\n",
					pr.Tick, pr.Round, pr.CurrentWave, pr.Phase, pr.CurrentGold, pr.RemainingLives, pr.EnemiesRemaining)
			}
		}
	})
	if err != nil && res.Outcome == "" {
		fail("%v", err)
	}

	if flagSave {
		store := openStore()
		id, saveErr := store.SaveRun(storage.RunFromResult(sc.Name, strategyName(), seed, res))
		store.Close()
		if saveErr != nil {
			fail("saving run: %v", saveErr)
		}
		logger.Info("run saved", "id", id)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(res); encErr != nil {
			fail("%v", encErr)
		}
	} else {
		printResult(p, sc.Name, seed, res)
	}

	if err != nil {
		reason := err.Error()
		if ctx.Err() != nil {
			reason = "interrupted"
		}
		fmt.Fprintf(os.Stderr, "Simulation aborted: %s\n", reason)
	}
	if code := exitCode(res, err); code != 0 {
		os.Exit(code)
	}
}

// exitCode is 0 only for a completed, successful run.
func exitCode(res simulation.Result, err error) int {
	if err != nil || !res.Success {
		return 1
	}
	return 0
}

func printResult(p *message.Printer, scenario string, seed int64, res simulation.Result) {
	p.Printf("Scenario:   %s (seed %d)\n", scenario, seed)
	p.Printf("Outcome:    %s\n", res.Outcome)
	p.Printf("Round:      %d\n", res.FinalRound)
	p.Printf("Lives:      %d\n", res.FinalLives)
	p.Printf("Money:      %d\n", res.FinalMoney)
	p.Printf("Score:      %d\n", res.Score)
	p.Printf("Buildings:  %d placed, %d rejected\n", res.BuildingsPlaced, res.FailedPlacements)
	p.Printf("Duration:   %.1fs simulated over %d ticks\n", res.Duration, res.Ticks)
}
